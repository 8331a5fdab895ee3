package notify

// emailTemplate is the HTML body for the disclosure report email.
const emailTemplate = `<html>
<body>
  <h2>New Financial Disclosure Detected</h2>
  <p><strong>Name:</strong> {{.Filing.Name}}</p>
  <p><strong>Filing Type:</strong> {{.Filing.FilingType}}</p>
  <p><strong>Filing Year:</strong> {{.Filing.FilingYear}}</p>
  <p><strong>Office:</strong> {{.Filing.Office}}</p>
  <p><strong>PDF URL:</strong> <a href="{{.Filing.DocumentURL}}">{{.Filing.DocumentURL}}</a></p>

  <h3>Detected Trades:</h3>
  <table border="1" cellpadding="5" style="border-collapse: collapse; width: 100%;">
    <tr style="background-color: #f2f2f2;">
      <th>Stock Name</th>
      <th>Ticker</th>
      <th>Filing Status</th>
      <th>Description</th>
      <th>Transaction Date</th>
      <th>Notification Date</th>
    </tr>
{{- range .Trades}}
{{- if .IsDiagnostic}}
    <tr>
      <td colspan="6"><em>{{.Note}}</em></td>
    </tr>
{{- if .Err}}
    <tr>
      <td colspan="6" style="font-family: monospace; font-size: 0.8em;">{{.Err}}</td>
    </tr>
{{- end}}
{{- if .PDFTextSample}}
    <tr>
      <td colspan="6" style="font-family: monospace; font-size: 0.8em;">{{.PDFTextSample}}</td>
    </tr>
{{- end}}
{{- else}}
    <tr>
      <td>{{.StockName}}</td>
      <td>{{.Ticker}}</td>
      <td>{{.FilingStatus}}</td>
      <td>{{.Description}}</td>
      <td>{{.TransactionDate}}</td>
      <td>{{.NotificationDate}}</td>
    </tr>
{{- end}}
{{- end}}
  </table>
  <p>This is an automated notification.</p>
</body>
</html>
`
