package fields

// Field describes one editable form field and the heading it is read from.
type Field struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Heading string `json:"heading,omitempty"`
	// Row marks fields read from the RFP timeline table instead of a heading.
	Row       string `json:"row,omitempty"`
	Multiline bool   `json:"multiline"`
}

var titlePrefixes = map[string]string{
	"rfp":       "GRANT RFP: ",
	"generic":   "GRANT PROPOSAL: ",
	"nonprofit": "NON-PROFIT GRANT PROPOSAL: ",
	"research":  "RESEARCH GRANT PROPOSAL: ",
}

const (
	rfpTimelineHeading = "III. TIMELINE FOR SCOPE OF SERVICES"
	rfpScopeHeading    = "IV. SCOPE OF SERVICES"
)

var rfpFields = []Field{
	{ID: "title", Label: "Grant RFP Title"},
	{ID: "postingDate", Label: "Posting Date", Heading: "POSTING DATE"},
	{ID: "solicitor", Label: "Solicited By", Heading: "SOLICITED BY"},
	{ID: "address", Label: "Address of Soliciting Party", Heading: "ADDRESS OF SOLICITING PARTY"},
	{ID: "purpose", Label: "I. Purpose of Request for Proposal", Heading: "I. PURPOSE OF REQUEST FOR PROPOSAL", Multiline: true},
	{ID: "background", Label: "II. Organization Background", Heading: "II. ORGANIZATION BACKGROUND", Multiline: true},
	{ID: "timeline_applicationPeriod", Label: "A. Grant Application Period", Row: "Grant Application Period"},
	{ID: "timeline_priorSubmissions", Label: "B. Prior to Final Grant Submissions", Row: "Prior to Final"},
	{ID: "timeline_afterSubmissions", Label: "C. After Final Grant Submissions", Row: "After Final"},
	{ID: "timeline_underwritingPeriod", Label: "D. Underwriting Period", Row: "Underwriting Period"},
	{ID: "timeline_underwritingReview", Label: "E. Underwriting Review", Row: "Underwriting Review"},
	{ID: "timeline_revisionsReport", Label: "F. Revisions and Final Report", Row: "Revisions"},
	{ID: "applicationPeriod", Label: "A. Grant Application Period", Heading: "A. GRANT APPLICATION PERIOD", Multiline: true},
	{ID: "priorToSubmissions", Label: "B. Prior to Final Grant Submissions", Heading: "B. PRIOR TO FINAL GRANT SUBMISSIONS", Multiline: true},
	{ID: "afterSubmissions", Label: "C. After Final Grant Submissions", Heading: "C. AFTER FINAL GRANT SUBMISSIONS", Multiline: true},
	{ID: "underwritingPeriod", Label: "D. Underwriting Period", Heading: "D. UNDERWRITING PERIOD", Multiline: true},
	{ID: "underwritingReview", Label: "E. Underwriting Review", Heading: "E. UNDERWRITING REVIEW", Multiline: true},
	{ID: "revisionsReport", Label: "F. Revisions and Final Report", Heading: "F. REVISIONS AND FINAL REPORT", Multiline: true},
	{ID: "submissionProcess", Label: "V. Submission Process", Heading: "V. SUBMISSION PROCESS", Multiline: true},
	{ID: "inquiries", Label: "VI. Questions / Inquiries Information", Heading: "VI. QUESTIONS / INQUIRIES INFORMATION", Multiline: true},
}

var genericFields = []Field{
	{ID: "title", Label: "Grant Proposal Title"},
	{ID: "summary", Label: "Executive Summary", Heading: "EXECUTIVE SUMMARY", Multiline: true},
	{ID: "orgInfo", Label: "Organization Information", Heading: "ORGANIZATION INFORMATION", Multiline: true},
	{ID: "need", Label: "Statement of Need", Heading: "STATEMENT OF NEED", Multiline: true},
	{ID: "projectDesc", Label: "Project Description", Heading: "PROJECT DESCRIPTION", Multiline: true},
	{ID: "goals", Label: "Goals and Objectives", Heading: "GOALS AND OBJECTIVES", Multiline: true},
	{ID: "timeline", Label: "Timeline", Heading: "TIMELINE", Multiline: true},
	{ID: "budget", Label: "Budget", Heading: "BUDGET", Multiline: true},
	{ID: "evaluation", Label: "Evaluation Plan", Heading: "EVALUATION PLAN", Multiline: true},
	{ID: "sustainability", Label: "Sustainability", Heading: "SUSTAINABILITY", Multiline: true},
	{ID: "conclusion", Label: "Conclusion", Heading: "CONCLUSION", Multiline: true},
}

var nonprofitFields = []Field{
	{ID: "title", Label: "Non-profit Grant Proposal Title"},
	{ID: "summary", Label: "Executive Summary", Heading: "EXECUTIVE SUMMARY", Multiline: true},
	{ID: "history", Label: "Organization History and Mission", Heading: "ORGANIZATION HISTORY AND MISSION", Multiline: true},
	{ID: "need", Label: "Community Need", Heading: "COMMUNITY NEED", Multiline: true},
	{ID: "programDesc", Label: "Program Description", Heading: "PROGRAM DESCRIPTION", Multiline: true},
	{ID: "population", Label: "Target Population", Heading: "TARGET POPULATION", Multiline: true},
	{ID: "impact", Label: "Expected Impact", Heading: "EXPECTED IMPACT", Multiline: true},
	{ID: "goals", Label: "Goals and Objectives", Heading: "GOALS AND OBJECTIVES", Multiline: true},
	{ID: "timeline", Label: "Timeline", Heading: "TIMELINE", Multiline: true},
	{ID: "budget", Label: "Budget", Heading: "BUDGET", Multiline: true},
	{ID: "metrics", Label: "Evaluation Metrics", Heading: "EVALUATION METRICS", Multiline: true},
	{ID: "sustainability", Label: "Sustainability Plan", Heading: "SUSTAINABILITY PLAN", Multiline: true},
	{ID: "capacity", Label: "Organizational Capacity", Heading: "ORGANIZATIONAL CAPACITY", Multiline: true},
	{ID: "conclusion", Label: "Conclusion", Heading: "CONCLUSION", Multiline: true},
}

var researchFields = []Field{
	{ID: "title", Label: "Research Grant Proposal Title"},
	{ID: "abstract", Label: "Abstract", Heading: "ABSTRACT", Multiline: true},
	{ID: "introduction", Label: "Introduction", Heading: "INTRODUCTION", Multiline: true},
	{ID: "literature", Label: "Literature Review", Heading: "LITERATURE REVIEW", Multiline: true},
	{ID: "questions", Label: "Research Question(s)", Heading: "RESEARCH QUESTION(S)", Multiline: true},
	{ID: "methodology", Label: "Methodology", Heading: "METHODOLOGY", Multiline: true},
	{ID: "dataCollection", Label: "Data Collection and Analysis", Heading: "DATA COLLECTION AND ANALYSIS", Multiline: true},
	{ID: "timeline", Label: "Timeline", Heading: "TIMELINE", Multiline: true},
	{ID: "budget", Label: "Budget", Heading: "BUDGET", Multiline: true},
	{ID: "outcomes", Label: "Expected Outcomes", Heading: "EXPECTED OUTCOMES", Multiline: true},
	{ID: "significance", Label: "Significance and Impact", Heading: "SIGNIFICANCE AND IMPACT", Multiline: true},
	{ID: "dissemination", Label: "Dissemination Plan", Heading: "DISSEMINATION PLAN", Multiline: true},
	{ID: "team", Label: "Research Team", Heading: "RESEARCH TEAM", Multiline: true},
	{ID: "references", Label: "References", Heading: "REFERENCES", Multiline: true},
}

var defaultFields = []Field{
	{ID: "title", Label: "Document Title"},
	{ID: "content", Label: "Document Content", Multiline: true},
}

// Definitions returns the ordered form fields for a document shape.
func Definitions(outputType, grantType string) []Field {
	if outputType != "grant" {
		return defaultFields
	}
	switch grantType {
	case "generic":
		return genericFields
	case "nonprofit":
		return nonprofitFields
	case "research":
		return researchFields
	default:
		return rfpFields
	}
}
