package report

import (
	"fmt"
	"strings"

	"researcher-agent-go/internal/model"
)

// Generate 把合并后的record渲染为markdown报告
func Generate(rec *model.ResearcherRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Research Profile: %s\n", rec.Name)

	b.WriteString("\n## Basic Information\n")
	basics := [][2]string{
		{"Specialization", rec.Specialization},
		{"Affiliation", rec.Affiliation},
		{"Email", rec.Email},
		{"Phone", rec.Phone},
		{"Location", rec.Location},
	}
	hasBasics := false
	for _, kv := range basics {
		if kv[1] != "" {
			fmt.Fprintf(&b, "- %s: %s\n", kv[0], kv[1])
			hasBasics = true
		}
	}
	if !hasBasics {
		b.WriteString("- No basic information available\n")
	}

	if rec.Summary != "" {
		b.WriteString("\n## Summary\n")
		b.WriteString(rec.Summary + "\n")
	}

	b.WriteString("\n## Research Interests\n")
	if len(rec.ResearchInterests) > 0 {
		for _, interest := range rec.ResearchInterests {
			fmt.Fprintf(&b, "- %s\n", interest)
		}
	} else {
		b.WriteString("- No research interests found\n")
	}

	if rec.KeyContributions != "" {
		b.WriteString("\n## Key Contributions\n")
		b.WriteString(rec.KeyContributions + "\n")
	}

	if len(rec.Education) > 0 {
		b.WriteString("\n## Education\n")
		for _, edu := range rec.Education {
			fmt.Fprintf(&b, "- %s\n", edu)
		}
	}

	b.WriteString("\n## Publications\n")
	if len(rec.Publications) > 0 {
		pubs := rec.Publications
		if len(pubs) > 10 {
			pubs = pubs[:10]
		}
		for i, pub := range pubs {
			fmt.Fprintf(&b, "%d. %s\n", i+1, pub.Title)
			if pub.Authors != "" {
				fmt.Fprintf(&b, "   Authors: %s\n", pub.Authors)
			}
			if pub.Journal != "" {
				fmt.Fprintf(&b, "   Journal: %s\n", pub.Journal)
			}
			if pub.URL != "" {
				fmt.Fprintf(&b, "   URL: %s\n", pub.URL)
			}
		}
	} else {
		b.WriteString("- No publications found\n")
	}

	b.WriteString("\n## Clinical Trials\n")
	if len(rec.ClinicalTrials) > 0 {
		for i, trial := range rec.ClinicalTrials {
			fmt.Fprintf(&b, "%d. %s\n", i+1, trial.Title)
			if trial.Status != "" {
				fmt.Fprintf(&b, "   Status: %s\n", trial.Status)
			}
			if trial.Condition != "" {
				fmt.Fprintf(&b, "   Condition: %s\n", trial.Condition)
			}
			if trial.URL != "" {
				fmt.Fprintf(&b, "   URL: %s\n", trial.URL)
			}
		}
	} else {
		b.WriteString("- No clinical trials found\n")
	}

	b.WriteString("\n## Data Sources\n")
	if len(rec.SourceURLs) > 0 {
		for source, u := range rec.SourceURLs {
			fmt.Fprintf(&b, "- %s: %s\n", source, u)
		}
	} else {
		b.WriteString("- Data extracted from local files only\n")
	}

	return b.String()
}
