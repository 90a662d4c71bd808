package output

import (
	"bytes"
	"html/template"

	"github.com/cockroachdb/errors"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
)

// HTMLReport is the data handed to the HTML template.
type HTMLReport struct {
	Summary HTMLSummary
	Specs   []HTMLSpec
}

// HTMLSummary counts the tests in the report.
type HTMLSummary struct {
	Total  int
	Passed int
	Failed int
}

// HTMLSpec groups the tests of one spec file.
type HTMLSpec struct {
	Name  string
	Tests []HTMLTest
}

// HTMLTest is a single test with its rendered logs.
type HTMLTest struct {
	Name        string
	StatusClass string
	Logs        string
}

// HTMLEncoder writes a self-contained HTML page with the logs of every test
// in a preformatted block.
type HTMLEncoder struct {
	Layout Layout
}

var htmlReport = template.Must(template.New("report").Parse(htmlTemplate))

// Encode implements Encoder.
func (e *HTMLEncoder) Encode(sections []Section) ([]byte, error) {
	var report HTMLReport
	index := make(map[string]int)

	for _, s := range sections {
		i, ok := index[s.Spec]
		if !ok {
			i = len(report.Specs)
			index[s.Spec] = i
			report.Specs = append(report.Specs, HTMLSpec{Name: s.Spec})
		}

		test := HTMLTest{
			Name:        s.Test,
			StatusClass: "passed",
			Logs:        e.Layout.Sequence(s.Entries, nil),
		}
		if s.Outcome == policy.Failed {
			test.StatusClass = "failed"
			report.Summary.Failed++
		} else {
			report.Summary.Passed++
		}
		report.Summary.Total++
		report.Specs[i].Tests = append(report.Specs[i].Tests, test)
	}

	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, report); err != nil {
		return nil, errors.Wrap(err, "rendering HTML report")
	}
	return buf.Bytes(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>termreport</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h2 { font-size: 1.1em; margin-top: 2em; }
.passed h3 { color: #1a7f37; }
.failed h3 { color: #cf222e; }
pre { background: #f6f8fa; padding: 1em; overflow-x: auto; }
</style>
</head>
<body>
<h1>termreport</h1>
<p class="summary">{{.Summary.Total}} tests, {{.Summary.Passed}} passed, {{.Summary.Failed}} failed</p>
{{range .Specs}}<h2>{{.Name}}</h2>
{{range .Tests}}<section class="{{.StatusClass}}">
<h3>{{.Name}}</h3>
{{if .Logs}}<pre>{{.Logs}}</pre>{{end}}
</section>
{{end}}{{end}}</body>
</html>
`
