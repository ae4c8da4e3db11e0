package descriptions

// Tool descriptions with practical examples and use cases

const (
	TaxFormInspectDescription = `Discover the fillable slots of a tax form PDF.

**When to use:** Before filling a form, to see what data it needs and whether it is interactive.

**Why it's useful:** Interactive forms expose named AcroForm fields; flat (printed) forms only carry text labels. This tool tells you which kind you have and lists every slot with its widget type.

**Examples:**
• Inspect a return: "Inspect income-tax-return.pdf to see which fields it has"
• Check form type: "Is withholding-statement.pdf interactive or flat?"

**Common workflows:**
1. Fill preparation: tax_form_inspect → tax_profile_parse → tax_form_fill
2. Form triage: tax_form_dir → tax_form_inspect → pick the right document

**Best practices:** Run this before tax_form_fill so you know which profile entries will be needed.`

	TaxProfileParseDescription = `Parse a user's profile text file into label/value pairs.

**When to use:** To preview what personal data can be recovered from a profile document before filling a form.

**Why it's useful:** Shows exactly which lines parsed and the strategy that matched each (colon, dotted leader, whitespace), so malformed lines can be fixed up front instead of silently dropping data.

**Examples:**
• Preview a profile: "Parse profile.txt and show me what was recognized"
• Debug a line: "Check whether my CNIC line is picked up correctly"

**Best practices:** Lines that match no strategy are skipped; rewrite them as 'Label: value'.`

	TaxFormFillDescription = `Fill a tax form PDF with data from a profile text file.

**When to use:** The main operation: takes a form and a profile, matches profile entries to form slots and writes a filled copy.

**Why it's useful:** Handles both interactive forms (fields set directly, appearance streams refreshed) and flat forms (values stamped next to their printed labels). Slots with no matching data are skipped, never guessed.

**Examples:**
• Fill a return: "Fill income-tax-return.pdf using profile.txt and save as filled.pdf"

**Common workflows:**
1. End to end: tax_form_search → tax_form_fetch → tax_form_inspect → tax_form_fill
2. Iterate: tax_profile_parse → fix profile → tax_form_fill

**Best practices:** Review the skipped-slot list in the response; those need manual entry.`

	TaxFormFetchDescription = `Download a tax form PDF from a URL into the forms directory.

**When to use:** After tax_form_search, to pull the official document locally.

**Why it's useful:** Government sites often serve an HTML landing page instead of the document itself; this tool follows the page's most plausible PDF link automatically.

**Examples:**
• Direct link: "Fetch https://fbr.gov.pk/.../IT-2.pdf into it-2.pdf"
• Landing page: "Fetch the forms page URL; the PDF link is resolved for you"`

	TaxFormSearchDescription = `Search the web for official tax form PDFs.

**When to use:** When the user names a form or describes a tax situation but has no document yet.

**Why it's useful:** The query is scoped to government domains and PDF results, so hits are directly fetchable with tax_form_fetch.

**Examples:**
• "Find the individual income tax return form"
• "Search for the sales tax registration form"`

	TaxFormDirDescription = `List tax form PDFs already stored in the forms directory.

**When to use:** To check whether a form was already downloaded before searching the web again.

**Examples:**
• "List all stored forms"
• "Find stored forms matching 'income return'"`

	TaxAgentAskDescription = `Ask the tax assistant a question or describe what you need.

**When to use:** For general tax questions, or when unsure which form applies.

**Why it's useful:** The assistant classifies the request: questions get a direct answer, form requests get a ranked list of recommended form types to feed into tax_form_search.

**Examples:**
• "What is the filing deadline for salaried individuals?"
• "I need to declare rental income, which form do I file?"`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"tax_form_inspect":  TaxFormInspectDescription,
	"tax_profile_parse": TaxProfileParseDescription,
	"tax_form_fill":     TaxFormFillDescription,
	"tax_form_fetch":    TaxFormFetchDescription,
	"tax_form_search":   TaxFormSearchDescription,
	"tax_form_dir":      TaxFormDirDescription,
	"tax_agent_ask":     TaxAgentAskDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
