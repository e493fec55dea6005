package search

import "strings"

var sampleDocuments = []Document{
	{
		ID:    "doc1",
		Score: 0.95,
		Metadata: Metadata{
			Title:   "Capital Area Food Bank Grant Proposal",
			Content: "The Capital Area Food Bank has been serving the DC metro area for over 40 years. Our mission is to address hunger today and build healthier futures tomorrow for residents struggling with food insecurity.",
			Type:    "grant_proposal",
			URL:     "https://example.com/cabf-grant-1",
		},
	},
	{
		ID:    "doc2",
		Score: 0.92,
		Metadata: Metadata{
			Title:   "CABF Community Impact Report 2023",
			Content: "In 2023, the Capital Area Food Bank distributed over 45 million meals to families facing food insecurity across Washington DC, Maryland, and Virginia. Our programs reached more than 400,000 individuals.",
			Type:    "impact_report",
			URL:     "https://example.com/cabf-impact-2023",
		},
	},
	{
		ID:    "doc3",
		Score: 0.89,
		Metadata: Metadata{
			Title:   "Food Insecurity in the DMV Region: Research Study",
			Content: "Food insecurity affects over 400,000 residents in the DC, Maryland, and Virginia region, with particularly high rates among children and seniors. Economic challenges from inflation have increased need by 30%.",
			Type:    "research",
			URL:     "https://example.com/cabf-research-dmv",
		},
	},
	{
		ID:    "doc4",
		Score: 0.85,
		Metadata: Metadata{
			Title:   "CABF Nutrition Education Program",
			Content: "The Capital Area Food Bank's nutrition education program provides resources and workshops to help families prepare healthy meals on a budget, promoting long-term health and well-being.",
			Type:    "program_description",
			URL:     "https://example.com/cabf-nutrition",
		},
	},
	{
		ID:    "doc5",
		Score: 0.83,
		Metadata: Metadata{
			Title:   "Emergency Food Assistance Program Guidelines",
			Content: "The Emergency Food Assistance Program (TEFAP) provides food to low-income individuals through our network of partner agencies. Eligibility is determined based on household income and size.",
			Type:    "program_guidelines",
			URL:     "https://example.com/cabf-tefap",
		},
	},
}

// SampleDocuments returns a copy of the fixed sample set served when every tier fails.
func SampleDocuments() []Document {
	return append([]Document(nil), sampleDocuments...)
}

// SampleDocument looks up a sample by id.
func SampleDocument(id string) (Document, bool) {
	for _, d := range sampleDocuments {
		if strings.EqualFold(d.ID, id) {
			return d, true
		}
	}
	return Document{}, false
}
