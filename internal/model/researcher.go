package model

// Source 数据来源标识
type Source string

const (
	SourceCSV            Source = "csv"
	SourcePubMed         Source = "pubmed"
	SourceResearchGate   Source = "researchgate"
	SourceGoogleScholar  Source = "google_scholar"
	SourceClinicalTrials Source = "clinical_trials"
	SourceCustomWebsite  Source = "custom_website"
	SourceAI             Source = "ai_generated"
)

// Publication 一篇论文
type Publication struct {
	Title   string `json:"title"`
	Authors string `json:"authors,omitempty"`
	Journal string `json:"journal,omitempty"`
	URL     string `json:"url,omitempty"`
}

// ClinicalTrial 一项临床试验
type ClinicalTrial struct {
	Title     string `json:"title"`
	Status    string `json:"status,omitempty"`
	Condition string `json:"condition,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ResearcherRecord 研究者记录
// 既表示单一来源的fragment，也表示合并后的完整profile
type ResearcherRecord struct {
	Name              string            `json:"name"`
	Specialization    string            `json:"specialization,omitempty"`
	Affiliation       string            `json:"affiliation,omitempty"`
	Email             string            `json:"email,omitempty"`
	Phone             string            `json:"phone,omitempty"`
	Location          string            `json:"location,omitempty"`
	ResearchInterests []string          `json:"research_interests,omitempty"`
	Publications      []Publication     `json:"publications,omitempty"`
	ClinicalTrials    []ClinicalTrial   `json:"clinical_trials,omitempty"`
	Education         []string          `json:"education,omitempty"`
	Summary           string            `json:"summary,omitempty"`
	KeyContributions  string            `json:"key_contributions,omitempty"`
	Source            Source            `json:"source,omitempty"`
	SourceURLs        map[string]string `json:"source_urls,omitempty"`
	AIEnhanced        bool              `json:"ai_enhanced,omitempty"`
	AIGenerated       bool              `json:"ai_generated,omitempty"`
}

// IsEmpty 判断除name/specialization外是否没有任何实质数据
// 用于决定是否回退到AI生成profile
func (r *ResearcherRecord) IsEmpty() bool {
	return r.Affiliation == "" &&
		r.Email == "" &&
		r.Phone == "" &&
		r.Location == "" &&
		len(r.ResearchInterests) == 0 &&
		len(r.Publications) == 0 &&
		len(r.ClinicalTrials) == 0 &&
		len(r.Education) == 0 &&
		r.Summary == ""
}
