package internal

import (
	"html/template"
	"net/http"
	"net/url"
)

// Browser-facing pages rendered after the vendor redirects the user back.
// These open inside the vendor's popup window, so the success and failure
// pages close themselves after a few seconds.

var resultPageTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Payment Result</title>
</head>
<body style="font-family:sans-serif;background:#f3f4f6;display:flex;align-items:center;justify-content:center;min-height:100vh;margin:0">
<div style="background:#fff;padding:2rem;border-radius:8px;box-shadow:0 2px 8px rgba(0,0,0,.1);max-width:28rem;width:100%">
{{if .Success}}
<h1 style="color:#16a34a">&#10003; Payment completed</h1>
{{else}}
<h1 style="color:#dc2626">&#10007; Payment failed</h1>
{{end}}
<p><strong>tid:</strong> {{.Tid}}</p>
{{if .Error}}<p><strong>error:</strong> {{.Error}}</p>{{end}}
<p style="color:#6b7280;font-size:.875rem">This window closes automatically.</p>
<button onclick="window.close()" style="margin-top:1rem;width:100%;background:#2563eb;color:#fff;padding:.5rem;border:0;border-radius:4px">Close</button>
</div>
<script>setTimeout(function(){ window.close(); }, 3000);</script>
</body>
</html>
`))

var diagnosticPageTemplate = template.Must(template.New("diagnostic").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="UTF-8">
<title>Payment Result - Missing Parameters</title>
</head>
<body style="font-family:sans-serif;background:#f3f4f6;padding:2rem">
<div style="background:#fff;padding:2rem;border-radius:8px;max-width:40rem;margin:0 auto">
<h1 style="color:#d97706">Payment result parameters missing</h1>
<p>The redirect did not carry a transaction id or pay token. Raw inputs for debugging:</p>
<h2 style="font-size:1rem">Parsed parameters</h2>
<table style="border-collapse:collapse;width:100%">
{{range $key, $values := .Params}}<tr>
<td style="border:1px solid #e5e7eb;padding:.25rem .5rem"><code>{{$key}}</code></td>
<td style="border:1px solid #e5e7eb;padding:.25rem .5rem"><code>{{index $values 0}}</code></td>
</tr>{{end}}
</table>
<h2 style="font-size:1rem">Raw body</h2>
<pre style="background:#1f2937;color:#a7f3d0;padding:1rem;border-radius:4px;overflow:auto">{{.RawBody}}</pre>
</div>
</body>
</html>
`))

const cancelPageHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="UTF-8">
<title>Payment Cancelled</title>
</head>
<body style="font-family:sans-serif;background:#f3f4f6;display:flex;align-items:center;justify-content:center;min-height:100vh;margin:0">
<div style="background:#fff;padding:2rem;border-radius:8px;max-width:28rem;width:100%">
<h1 style="color:#d97706">&#9888; Payment cancelled</h1>
<p>The payment was cancelled before completion.</p>
<button onclick="window.close()" style="margin-top:1rem;width:100%;background:#2563eb;color:#fff;padding:.5rem;border:0;border-radius:4px">Close</button>
</div>
<script>setTimeout(function(){ window.close(); }, 3000);</script>
</body>
</html>
`

type resultPageData struct {
	Success bool
	Tid     string
	Error   string
}

type diagnosticPageData struct {
	Params  url.Values
	RawBody string
}

func renderResultPage(w http.ResponseWriter, data resultPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = resultPageTemplate.Execute(w, data)
}

func renderDiagnosticPage(w http.ResponseWriter, params url.Values, rawBody string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = diagnosticPageTemplate.Execute(w, diagnosticPageData{Params: params, RawBody: rawBody})
}

func renderCancelPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(cancelPageHTML))
}
