package output

import (
	"bytes"
	"encoding/xml"

	"github.com/cockroachdb/errors"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite groups the tests of one spec file
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a test failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitEncoder writes one testsuite per spec with the rendered logs of each
// test as its system output.
type JUnitEncoder struct {
	Layout Layout
}

// Encode implements Encoder.
func (e *JUnitEncoder) Encode(sections []Section) ([]byte, error) {
	root := JUnitTestSuites{Name: "termreport"}
	index := make(map[string]int)

	for _, s := range sections {
		i, ok := index[s.Spec]
		if !ok {
			i = len(root.TestSuites)
			index[s.Spec] = i
			root.TestSuites = append(root.TestSuites, JUnitTestSuite{Name: s.Spec})
		}
		suite := &root.TestSuites[i]

		tc := JUnitTestCase{
			Name:      s.Test,
			ClassName: s.Spec,
			SystemOut: e.Layout.Sequence(s.Entries, nil),
		}
		if s.Outcome == policy.Failed {
			tc.Failure = &JUnitFailure{
				Message: "Test failed",
				Type:    "TestFailure",
				Content: lastError(s),
			}
			suite.Failures++
			root.Failures++
		}
		suite.Tests++
		root.Tests++
		suite.TestCases = append(suite.TestCases, tc)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(root); err != nil {
		return nil, errors.Wrap(err, "encoding JUnit report")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// lastError returns the message of the last error record in the section.
func lastError(s Section) string {
	for i := len(s.Entries) - 1; i >= 0; i-- {
		if r := s.Entries[i].Record; r != nil && r.IsError() {
			return r.Message()
		}
	}
	return ""
}
