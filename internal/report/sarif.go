package report

import (
	"encoding/json"
	"io"

	"github.com/keygate/keygate/internal/types"
)

type sarif struct {
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt `json:"artifactLocation"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevHigh:
		return "error"
	case types.SevMed:
		return "warning"
	default:
		return "note"
	}
}

// locationURI names the probed surface. SARIF wants an artifact location;
// the closest analogue for a network audit is the target path on the source
// origin.
func locationURI(source string, f types.Finding) string {
	switch f.Category {
	case "bucket_list", "bucket_public":
		return source + "/storage/v1/bucket/" + f.Target
	case "rpc_invoke":
		return source + "/rest/v1/rpc/" + f.Target
	case "leaked_credential":
		return f.Target
	default:
		return source + "/rest/v1/" + f.Target
	}
}

// WriteSARIF writes the report findings as SARIF 2.1.0.
func WriteSARIF(w io.Writer, r types.Report) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: r.Tool, Version: r.Version}},
		Results: []sarifResult{},
	}
	for _, f := range r.Findings {
		run.Results = append(run.Results, sarifResult{
			RuleID:  f.Category,
			Level:   sevToLevel(f.Severity),
			Message: sarifMessage{Text: f.Message},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: locationURI(r.Source, f)},
				},
			}},
		})
	}
	doc := sarif{Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
