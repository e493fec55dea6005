package prompt

const rfpTemplate = `Generate a structured grant RFP (Request for Proposal) document about: %[1]s.

Please use the following structured format carefully so it can be properly formatted in a Word document:

# GRANT RFP: [Title]

## POSTING DATE
[Current date or appropriate posting date]

## SOLICITED BY
[Name of organization soliciting proposals]

## ADDRESS OF SOLICITING PARTY
[Address of the organization]

## I. PURPOSE OF REQUEST FOR PROPOSAL
[Clear description of what the grant aims to fund and overall purpose]

## II. ORGANIZATION BACKGROUND
[Background information about the soliciting organization]

## III. TIMELINE FOR SCOPE OF SERVICES
[Include a detailed timeline with projected dates for each activity in table format]

| ACTIVITY | PROJECTED DATE |
| -------- | -------------- |
| A. Grant Application Period | [Date range] |
| B. Prior to Final Grant Submissions | [Date range] |
| C. After Final Grant Submissions | [Date range] |
| D. Underwriting Period | [Date range] |
| E. Underwriting Review | [Date range] |
| F. Revisions and Final Report | [Date range] |

## IV. SCOPE OF SERVICES

### A. GRANT APPLICATION PERIOD
[Details about the application period process]

### B. PRIOR TO FINAL GRANT SUBMISSIONS
[Requirements and processes before submission]

### C. AFTER FINAL GRANT SUBMISSIONS
[What happens after submissions are received]

### D. UNDERWRITING PERIOD
[Details about the underwriting process]

### E. UNDERWRITING REVIEW
[Information about review criteria and process]

### F. REVISIONS AND FINAL REPORT
[Requirements for revisions and final reporting]

## V. SUBMISSION PROCESS
[Detailed instructions for how to submit grant applications]

## VI. QUESTIONS / INQUIRIES INFORMATION
[Contact information and process for submitting questions]`

const genericTemplate = `Generate a structured generic grant proposal about: %[1]s.

Please use the following structured format carefully:

# GRANT PROPOSAL: [Title]

## EXECUTIVE SUMMARY
[Brief overview of the proposal]

## ORGANIZATION INFORMATION
[Information about the organization applying for the grant]

## STATEMENT OF NEED
[Clear explanation of the problem or need that this grant will address]

## PROJECT DESCRIPTION
[Detailed description of the proposed project, activities, and goals]

## GOALS AND OBJECTIVES
[Specific, measurable goals and objectives]

## TIMELINE
[Project timeline with milestones in a table format]

| MILESTONE | COMPLETION DATE |
| --------- | --------------- |
| [Milestone 1] | [Date] |
| [Milestone 2] | [Date] |
| [Milestone 3] | [Date] |

## BUDGET
[Detailed budget breakdown in table format]

| EXPENSE CATEGORY | AMOUNT | DESCRIPTION |
| ---------------- | ------ | ----------- |
| [Category 1] | [Amount] | [Description] |
| [Category 2] | [Amount] | [Description] |
| [Category 3] | [Amount] | [Description] |
| TOTAL | [Total Amount] | |

## EVALUATION PLAN
[How the project's success will be measured and evaluated]

## SUSTAINABILITY
[How the project will continue after grant funding ends]

## CONCLUSION
[Summary statement about the importance of this project]`

const nonprofitTemplate = `Generate a structured non-profit grant proposal about: %[1]s.

Please use the following structured format carefully:

# NON-PROFIT GRANT PROPOSAL: [Title]

## EXECUTIVE SUMMARY
[Brief overview of the proposal and organization]

## ORGANIZATION HISTORY AND MISSION
[History, mission statement, and core values of the non-profit]

## COMMUNITY NEED
[Description of the community need being addressed]

## PROGRAM DESCRIPTION
[Detailed description of the program or initiative]

## TARGET POPULATION
[Description of who will be served by this program]

## EXPECTED IMPACT
[The anticipated outcomes and impact on the community]

## GOALS AND OBJECTIVES
[Specific, measurable goals and objectives]

## TIMELINE
[Project timeline with key milestones in a table format]

| MILESTONE | COMPLETION DATE |
| --------- | --------------- |
| [Milestone 1] | [Date] |
| [Milestone 2] | [Date] |
| [Milestone 3] | [Date] |

## BUDGET
[Detailed budget breakdown]

| EXPENSE CATEGORY | AMOUNT | DESCRIPTION |
| ---------------- | ------ | ----------- |
| [Category 1] | [Amount] | [Description] |
| [Category 2] | [Amount] | [Description] |
| [Category 3] | [Amount] | [Description] |
| TOTAL | [Total Amount] | |

## EVALUATION METRICS
[How success will be measured and reported]

## SUSTAINABILITY PLAN
[How the program will be sustained beyond the grant period]

## ORGANIZATIONAL CAPACITY
[Description of the organization's ability to implement the program]

## CONCLUSION
[Closing appeal for support]`

const researchTemplate = `Generate a structured research grant proposal about: %[1]s.

Please use the following structured format carefully:

# RESEARCH GRANT PROPOSAL: [Title]

## ABSTRACT
[Brief summary of the research project]

## INTRODUCTION
[Introduction to the research topic and its importance]

## LITERATURE REVIEW
[Summary of existing research and identification of gaps]

## RESEARCH QUESTION(S)
[Clear statement of research questions]

## METHODOLOGY
[Detailed description of research methods, procedures, and design]

## DATA COLLECTION AND ANALYSIS
[Description of how data will be collected, managed, and analyzed]

## TIMELINE
[Research timeline with phases in a table format]

| RESEARCH PHASE | TIME PERIOD |
| -------------- | ----------- |
| [Phase 1] | [Time Period] |
| [Phase 2] | [Time Period] |
| [Phase 3] | [Time Period] |

## BUDGET
[Create a detailed budget that incorporates the staff positions and percentages mentioned in the context]

| EXPENSE CATEGORY | AMOUNT | JUSTIFICATION |
| ---------------- | ------ | ------------- |
| [Category 1] | [Amount] | [Justification] |
| [Category 2] | [Amount] | [Justification] |
| [Category 3] | [Amount] | [Justification] |
| TOTAL | [Total Amount] | |

## EXPECTED OUTCOMES
[Describe expected research findings related to the project]

## SIGNIFICANCE AND IMPACT
[Discuss the significance of this research]

## DISSEMINATION PLAN
[Describe how findings will be shared]

## RESEARCH TEAM
[List the research team incorporating the staff mentioned in the context with their specific roles]

## REFERENCES
[Include relevant references]`

const grantSuffix = `

Please ensure all sections are detailed and specific to the query: %[1]s.

IMPORTANT: Make all tables well-formatted with proper rows and columns to be easily converted to a Word document table.`

const documentTemplate = `Generate a structured %[1]s document with %[2]d pages about: %[3]s.

Please use the following structured format:

# Title
## Introduction
[Introduction content]

## Main Section 1
[Section content with key points and detailed explanations]

## Main Section 2
[Section content with key points and detailed explanations]

## Main Section 3
[Section content with key points and detailed explanations]

## Conclusion
[Concluding thoughts]

Ensure there are %[2]d pages worth of content with proper headings, subheadings, and paragraphs.`

const pptTemplate = `Generate content for a PowerPoint presentation with exactly %[1]d slides about: %[2]s.

Format each slide as:

Slide 1: Title
[Title of presentation]
[Subtitle or brief description]

Slide 2: Agenda/Overview
• [Bullet point 1]
• [Bullet point 2]
• [Bullet point 3]

Slide 3: [Topic 1]
• [Key point 1]
• [Key point 2]
• [Supporting detail]

Continue with this exact format for all %[1]d slides. Include introduction slides, content slides, and a conclusion slide.`

const xTemplate = `Craft a structured Twitter/X post about: %[1]s.

Format as:

POST:
[Main content of the tweet - compelling and concise, within character limit]

HASHTAGS:
[3-5 relevant hashtags]

ENGAGEMENT PROMPT:
[Question or call to action to encourage engagement]`

const instagramTemplate = `Create an Instagram post about: %[1]s.

Format as:

CAPTION:
[Engaging opening line]

[Main content with storytelling elements]

[Call to action]

HASHTAGS:
[8-10 relevant hashtags]`

const contextPreamble = `You are a helpful AI assistant creating a document based on user request.

IMPORTANT CONTEXT INFORMATION:
%[1]s

USER REQUEST:
The user has asked you to create a %[2]s document about: "%[3]s"

You MUST incorporate the information from the context above into the document you generate. Use specific details, facts, and information from the provided context where relevant.

`

const aiEditTemplate = `You are an AI document editor specialized in grant proposals.
I have a %[1]s grant document in HTML format, and I need you to edit it according to this request: "%[2]s"

Rules for editing:
1. Maintain the same HTML structure and format with # markers and h1 tags
2. Only modify the content as requested, keeping the overall formatting consistent
3. Ensure headers remain intact (like POSTING DATE, SOLICITED BY, etc.)
4. Return the complete edited HTML, not just the changes
5. Make thoughtful, relevant edits based on the request

Here is the current HTML document:
%[3]s

Please provide the complete edited HTML in response.`

const selectiveEditTemplate = `You are an AI document editor specialized in grant proposals.

I have a complete %[1]s grant document in HTML format. I need you to edit a SPECIFIC SECTION of this document based on the following request: "%[2]s"

THE SECTION TO EDIT IS:
"%[3]s"

FULL DOCUMENT HTML:
%[4]s

Rules for editing:
1. Return the ENTIRE document HTML with ONLY the specified section modified according to the request
2. Maintain exactly the same HTML structure, including all # markers, h1 tags, and formatting
3. Do not alter any part of the document outside of the specific section to be edited
4. Make thoughtful, relevant edits to the specified section based on the request
5. Keep any existing styling or formatting in the edited section

Please provide the complete edited document HTML as your response.`

const selectionRewriteTemplate = `You are an AI document editor specialized in grant proposals.

I have a %[1]s grant document. I need you to rewrite ONE passage of it based on the following request: "%[2]s"

THE PASSAGE TO REWRITE IS:
"%[3]s"

IT APPEARS IN THIS SECTION:
%[4]s

Rules for editing:
1. Return ONLY the rewritten passage as plain text, without quotes, markup or commentary
2. Keep the passage consistent with the surrounding section
3. Do not rewrite anything outside the passage

Please provide the rewritten passage as your response.`

const reviewTemplate = `Review the following document content and identify any issues that need attention.
Focus on:
1. Grammatical errors
2. Factual inaccuracies
3. Confusing or unclear language
4. Formatting issues
5. Any other problems you notice

IMPORTANT INSTRUCTIONS:
- IGNORE all hashtags (#, ##, ###) and markdown-style formatting as these are intentional formatting elements
- Do NOT suggest changes to the document structure or heading format
- Only focus on actual content issues like grammar, factual errors, and clarity
- Do not be concerned with the number of hashtags or their placement

For each issue, provide:
1. The problematic text
2. Why it's a problem
3. A suggested correction

Format your response as a JSON array of objects with the following structure:
[
  {
    "problem": "The problematic text",
    "reason": "Why it's a problem",
    "suggestion": "Suggested correction"
  }
]

If there are no issues, return an empty array.

Here is the document content:
%[1]s`
