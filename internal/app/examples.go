package app

// Example is a named sample report.
type Example struct {
	Name   string `json:"name"`
	Report string `json:"report"`
}

// QAExample is a named sample passage and question.
type QAExample struct {
	Name     string `json:"name"`
	Passage  string `json:"passage"`
	Question string `json:"question"`
}

var exampleReports = []Example{
	{
		Name: "Example 1: Multiple Pathologies",
		Report: `
1. mild pulmonary edema, and cardiomegaly. trace pleural fluid effusions.
2. low lung volumes with minimal basilar atelectasis.
3. no new focal consolidation.
4. interval placement of defibrillation pads.`,
	},
	{
		Name: "Example 2: Negative Findings",
		Report: `
1. unremarkable cardiomediastinal silhouette
2. diffuse reticular pattern, which can be seen with an atypical infection or chronic fibrotic change. no focal consolidation.
3. no pleural effusion or pneumothorax
4. mild degenerative changes in the lumbar spine and old right rib fractures.`,
	},
}

var exampleQA = []QAExample{
	{
		Name:     "Clinical Case 1",
		Passage:  "Abnormal echocardiogram findings and followup. Shortness of breath, congestive heart failure, and valvular insufficiency. The patient complains of shortness of breath, which is worsening. The patient underwent an echocardiogram, which shows severe mitral regurgitation and also large pleural effusion. The patient is an 86-year-old female admitted for evaluation of abdominal pain and bloody stools.",
		Question: "How old is the patient?",
	},
	{
		Name:     "Clinical Case 2",
		Passage:  "The word pharmacy is derived from its root word pharma which was a term used since the 15th–17th centuries. However, the original Greek roots from pharmakos imply sorcery or even poison.",
		Question: "What word is the word pharmacy taken from?",
	},
}

// ExampleReports lists the sample reports in display order.
func ExampleReports() []Example {
	return append([]Example(nil), exampleReports...)
}

// QAExamples lists the sample questions in display order.
func QAExamples() []QAExample {
	return append([]QAExample(nil), exampleQA...)
}

// FindExample returns the sample report called name.
func FindExample(name string) (Example, bool) {
	for _, ex := range exampleReports {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}

// FindQAExample returns the sample question called name.
func FindQAExample(name string) (QAExample, bool) {
	for _, ex := range exampleQA {
		if ex.Name == name {
			return ex, true
		}
	}
	return QAExample{}, false
}
