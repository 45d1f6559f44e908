package corpus

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thoreinstein/skillctx/internal/skill"
	"github.com/thoreinstein/skillctx/internal/validator"
	"github.com/thoreinstein/skillctx/pkg/frontmatter"
)

// SkillFileName is the file name of a directory-style skill.
const SkillFileName = "SKILL.md"

// offensiveRisk is the risk label that requires an authorization disclaimer.
const offensiveRisk = "offensive"

// riskLevels lists the accepted values of the risk field.
var riskLevels = []string{"none", "safe", "critical", offensiveRisk}

var disclaimerPattern = regexp.MustCompile(`(?i)AUTHORIZED\s+USE\s+ONLY`)

// Header is the frontmatter schema of a corpus file.
type Header struct {
	Name          string            `yaml:"name"`
	Title         string            `yaml:"title,omitempty"`
	Description   string            `yaml:"description,omitempty"`
	Priority      string            `yaml:"priority,omitempty"`
	Impact        string            `yaml:"impact,omitempty"`
	Globs         StringList        `yaml:"globs,omitempty"`
	Keywords      StringList        `yaml:"keywords,omitempty"`
	Summary       string            `yaml:"summary,omitempty"`
	Tokens        *int              `yaml:"tokens,omitempty"`
	SummaryTokens *int              `yaml:"summary_tokens,omitempty"`
	Risk          string            `yaml:"risk,omitempty"`
	Source        string            `yaml:"source,omitempty"`
	Metadata      map[string]string `yaml:"metadata,omitempty"`
}

// ParseDocument builds a document from the content of the file at path.
// Findings are appended to res. ok is false when the file cannot be turned
// into a document; an error issue explains why.
func ParseDocument(path string, content []byte, est Estimator, res *validator.Result) (doc skill.Document, ok bool) {
	h, body, err := frontmatter.MustParse[Header](content)
	if err != nil {
		res.AddError(path, "", err.Error(), nil)
		return skill.Document{}, false
	}

	text := strings.TrimSpace(string(body))
	doc = skill.Document{
		ID:       strings.TrimSpace(h.Name),
		Title:    firstNonEmpty(h.Title, h.Description),
		Body:     text,
		Summary:  strings.TrimSpace(h.Summary),
		Globs:    slices.Clone([]string(h.Globs)),
		Keywords: normalizeKeywords(h.Keywords),
		Source:   path,
		Metadata: metadata(h),
	}

	if doc.ID == "" {
		doc.ID = fallbackID(path)
		res.AddWarning(path, "name", "missing, using "+doc.ID, nil)
	}
	if doc.Title == "" {
		doc.Title = doc.ID
	}

	checkMetadata(path, h, res)
	resolveTier(path, h, &doc, res)
	if !resolveCosts(path, h, est, &doc, res) {
		return skill.Document{}, false
	}

	if doc.Body == "" {
		res.AddWarning(path, "", "body is empty", nil)
	}
	for _, g := range doc.Globs {
		if !doublestar.ValidatePattern(g) {
			res.AddWarning(path, "globs", "malformed pattern will never match", g)
		}
	}
	if len(doc.Globs) == 0 && len(doc.Keywords) == 0 {
		res.AddWarning(path, "", "no globs or keywords; document can never be selected", nil)
	}
	if doc.Summary != "" && !doc.HasSummary() {
		res.AddWarning(path, "summary", "not cheaper than the body and will be ignored", doc.SummaryCost)
	}
	if strings.EqualFold(h.Risk, offensiveRisk) && !disclaimerPattern.MatchString(doc.Body) {
		res.AddWarning(path, "risk", "offensive skill lacks an AUTHORIZED USE ONLY disclaimer", nil)
	}
	if doc.Body != "" && !strings.Contains(doc.Body, "```") {
		res.AddInfo(path, "", "no code examples", nil)
	}
	return doc, true
}

// checkMetadata reports header fields that are missing or inconsistent
// with the file location. None of them affect selection.
func checkMetadata(path string, h Header, res *validator.Result) {
	name := strings.TrimSpace(h.Name)
	if dir := filepath.Base(filepath.Dir(path)); name != "" && isSkillFile(path) && name != dir {
		res.AddWarning(path, "name", "does not match directory "+dir, name)
	}
	if strings.TrimSpace(h.Description) == "" {
		res.AddInfo(path, "description", "missing", nil)
	}
	switch risk := strings.TrimSpace(h.Risk); {
	case risk == "":
		res.AddInfo(path, "risk", "missing, expected one of "+strings.Join(riskLevels, ", "), nil)
	case !slices.Contains(riskLevels, strings.ToLower(risk)):
		res.AddWarning(path, "risk", "unknown level, expected one of "+strings.Join(riskLevels, ", "), risk)
	}
	if strings.TrimSpace(h.Source) == "" {
		res.AddInfo(path, "source", "missing attribution", nil)
	}
}

func isSkillFile(path string) bool {
	return strings.EqualFold(filepath.Base(path), SkillFileName)
}

func resolveTier(path string, h Header, doc *skill.Document, res *validator.Result) {
	raw, field := h.Priority, "priority"
	if raw == "" {
		raw, field = h.Impact, "impact"
	}
	if raw == "" {
		doc.Tier = skill.TierMedium
		return
	}
	tier, err := skill.ParseTier(raw)
	if err != nil {
		res.AddWarning(path, field, "unknown tier, using "+tier.String(), raw)
	}
	doc.Tier = tier
}

func resolveCosts(path string, h Header, est Estimator, doc *skill.Document, res *validator.Result) bool {
	doc.TokenCost = est.Estimate(doc.Body)
	if h.Tokens != nil {
		if *h.Tokens < 0 {
			res.AddError(path, "tokens", "must not be negative", *h.Tokens)
			return false
		}
		doc.TokenCost = *h.Tokens
	}

	doc.SummaryCost = est.Estimate(doc.Summary)
	if h.SummaryTokens != nil {
		if *h.SummaryTokens < 0 {
			res.AddError(path, "summary_tokens", "must not be negative", *h.SummaryTokens)
			return false
		}
		doc.SummaryCost = *h.SummaryTokens
	}
	return true
}

// fallbackID derives an id from the file location: the directory name for
// SKILL.md files, otherwise the file name without extension.
func fallbackID(path string) string {
	if isSkillFile(path) {
		return filepath.Base(filepath.Dir(path))
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func normalizeKeywords(in StringList) []string {
	var out []string
	for _, k := range in {
		k = strings.ToLower(strings.Join(strings.Fields(k), " "))
		if k != "" && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func metadata(h Header) map[string]string {
	m := make(map[string]string, len(h.Metadata)+2)
	for k, v := range h.Metadata {
		m[k] = v
	}
	if h.Risk != "" {
		m["risk"] = h.Risk
	}
	if h.Source != "" {
		m["source"] = h.Source
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// HeaderFor reconstructs a frontmatter header describing doc. Declared costs
// are always written out so the header reproduces doc exactly.
func HeaderFor(doc skill.Document) Header {
	h := Header{
		Name:     doc.ID,
		Priority: doc.Tier.String(),
		Globs:    slices.Clone(doc.Globs),
		Keywords: slices.Clone(doc.Keywords),
		Summary:  doc.Summary,
		Tokens:   &doc.TokenCost,
	}
	if doc.Title != doc.ID {
		h.Title = doc.Title
	}
	if doc.Summary != "" {
		h.SummaryTokens = &doc.SummaryCost
	}
	meta := make(map[string]string, len(doc.Metadata))
	for k, v := range doc.Metadata {
		switch k {
		case "risk":
			h.Risk = v
		case "source":
			h.Source = v
		default:
			meta[k] = v
		}
	}
	if len(meta) > 0 {
		h.Metadata = meta
	}
	return h
}
