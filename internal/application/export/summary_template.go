package export

// summaryTemplate is the HTML rendered to project-summary.pdf
const summaryTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Project.Identifier}} project summary</title>
<style>
body { font-family: sans-serif; font-size: 11pt; color: #222; }
h1 { font-size: 18pt; margin-bottom: 0; }
h2 { font-size: 13pt; border-bottom: 1px solid #aaa; margin-top: 18pt; }
table { border-collapse: collapse; width: 100%; }
td, th { text-align: left; padding: 3pt 6pt; vertical-align: top; }
.muted { color: #666; }
</style>
</head>
<body>
<h1>{{.Project.Name}}</h1>
<p class="muted">{{.Project.Identifier}} &middot; exported {{formatDate .Exported}}</p>

<h2>Objective</h2>
<p>{{.Project.Description}}</p>

<h2>Contacts</h2>
<table>
{{range .Project.ContactPoints}}<tr><th>{{title .Role}}</th><td>{{.Name}}</td><td>{{.Email}}</td></tr>
{{end}}</table>

<h2>Funding</h2>
<p>{{.Project.FundingText}}</p>

{{if .Project.Experiments}}<h2>Experiments</h2>
{{range .Project.Experiments}}<h3>{{.Name}}</h3>
<table>
<tr><th>Species</th><td>{{join .Species ", "}}</td></tr>
<tr><th>Specimens</th><td>{{join .Specimens ", "}}</td></tr>
<tr><th>Analytes</th><td>{{join .Analytes ", "}}</td></tr>
<tr><th>Experimental groups</th><td>{{.Groups}}</td></tr>
</table>
{{end}}{{end}}
<h2>Data</h2>
<table>
<tr><th>Samples</th><td>{{.Project.Samples}}</td></tr>
<tr><th>Genomics measurements</th><td>{{.Project.Measurements.NGS}}</td></tr>
<tr><th>Proteomics measurements</th><td>{{.Project.Measurements.PxP}}</td></tr>
</table>
{{if .Project.Collaborators}}<h2>Collaborators</h2>
<p>{{join .Project.Collaborators ", "}}</p>{{end}}
</body>
</html>
`
