package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// ReportHeader starts the report of an invalid configuration.
const ReportHeader = "[termreport] Invalid plugin install options:"

// Issue is one configuration violation. Path uses "/" between segments.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("=> .%s: %s", i.Path, i.Message)
}

// ValidationError holds every violation found in a configuration.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(ReportHeader)
	for _, issue := range e.Issues {
		sb.WriteString("\n")
		sb.WriteString(issue.String())
	}
	return sb.String()
}

// Lines returns the report one line per entry, header first.
func (e *ValidationError) Lines() []string {
	lines := []string{ReportHeader}
	for _, issue := range e.Issues {
		lines = append(lines, issue.String())
	}
	return lines
}

func newValidationError(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Path < issues[j].Path
	})
	return &ValidationError{Issues: issues}
}

// Schema returns the JSON schema configuration documents are checked
// against.
func Schema() map[string]any {
	typeNames := make([]any, 0, 2*len(record.Types()))
	for _, t := range record.Types() {
		typeNames = append(typeNames, string(t))
	}
	for _, name := range record.TypeNames() {
		typeNames = append(typeNames, name)
	}
	modes := make([]any, 0, 3)
	for _, m := range policy.Modes() {
		modes = append(modes, m)
	}

	str := map[string]any{"type": "string"}
	boolean := map[string]any{"type": "boolean"}

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"collectTypes": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": typeNames},
			},
			"filterLog":   str,
			"keepLog":     str,
			"compactLogs": map[string]any{"type": "integer", "minimum": 0},
			"outputRoot":  str,
			"specRoot":    str,
			"outputTarget": map[string]any{
				"type":                 "object",
				"additionalProperties": str,
			},
			"printLogsToConsole": map[string]any{"type": "string", "enum": modes},
			"printLogsToFile":    map[string]any{"type": "string", "enum": modes},
			"nestedOutput":       boolean,
			"collectTestLogs":    str,
			"xhr": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"printRequestData": boolean,
					"printHeaderData":  boolean,
				},
			},
			"asciiIcons": boolean,
		},
	}
}

var schemaLoader = gojsonschema.NewGoLoader(Schema())

// Validate checks a JSON configuration document against the schema and the
// names known to reg. It returns a *ValidationError listing every issue.
func Validate(doc []byte, reg *Registry) error {
	if reg == nil {
		reg = NewRegistry()
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return errors.Wrap(err, "validating config")
	}

	var issues []Issue
	for _, re := range result.Errors() {
		issues = append(issues, issueFor(re))
	}
	issues = append(issues, reg.check(referencesOf(doc))...)
	return newValidationError(issues)
}

// referencesOf extracts the registry names from doc, skipping values of the
// wrong type, which the schema already reports.
func referencesOf(doc []byte) references {
	str := func(path string) string {
		v := gjson.GetBytes(doc, path)
		if v.Type != gjson.String {
			return ""
		}
		return v.String()
	}
	refs := references{
		filterLog:       str("filterLog"),
		keepLog:         str("keepLog"),
		collectTestLogs: str("collectTestLogs"),
		targets:         make(map[string]string),
	}
	gjson.GetBytes(doc, "outputTarget").ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.String {
			refs.targets[key.String()] = value.String()
		}
		return true
	})
	return refs
}

func issueFor(re gojsonschema.ResultError) Issue {
	// Segments are joined with "/" so keys such as "out.txt" stay whole.
	path := re.Context().String("/")
	path = strings.TrimPrefix(strings.TrimPrefix(path, gojsonschema.STRING_CONTEXT_ROOT), "/")
	details := re.Details()

	switch re.Type() {
	case "invalid_type":
		return Issue{
			Path:    path,
			Message: fmt.Sprintf("Invalid type: %s (expected %s)", jsonType(details["given"]), expectedTypes(details["expected"])),
		}
	case "additional_property_not_allowed":
		property := fmt.Sprint(details["property"])
		if path != "" {
			property = path + "/" + property
		}
		return Issue{Path: property, Message: "Additional properties not allowed"}
	case "enum":
		allowed := strings.ReplaceAll(fmt.Sprint(details["allowed"]), `"`, "")
		return Issue{Path: path, Message: fmt.Sprintf("Invalid value (expected one of %s)", allowed)}
	case "number_gte":
		return Issue{Path: path, Message: fmt.Sprintf("Must be greater than or equal to %v", details["min"])}
	}
	return Issue{Path: path, Message: re.Description()}
}

// jsonType reports integers as numbers, the way the value appears in the
// document.
func jsonType(given any) string {
	s := fmt.Sprint(given)
	if s == gojsonschema.TYPE_INTEGER {
		return gojsonschema.TYPE_NUMBER
	}
	return s
}

func expectedTypes(expected any) string {
	s := strings.Trim(fmt.Sprint(expected), "[]")
	return strings.ReplaceAll(s, ",", "/")
}
