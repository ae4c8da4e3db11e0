package pdf

// SlotKind identifies how a fillable slot was discovered
type SlotKind string

const (
	// SlotKindAcroField is a named field from the document's AcroForm tree
	SlotKindAcroField SlotKind = "acro_field"
	// SlotKindFlatLabel is a printed label inferred from the page text of a
	// form without interactive fields
	SlotKindFlatLabel SlotKind = "flat_label"
)

// WidgetKind classifies an interactive field's widget
type WidgetKind string

const (
	WidgetText      WidgetKind = "text"
	WidgetCheckbox  WidgetKind = "checkbox"
	WidgetRadio     WidgetKind = "radio"
	WidgetButton    WidgetKind = "button"
	WidgetDropdown  WidgetKind = "dropdown"
	WidgetListbox   WidgetKind = "listbox"
	WidgetSignature WidgetKind = "signature"
	WidgetUnknown   WidgetKind = "unknown"
)

// FormSlot is one fillable location in a form
type FormSlot struct {
	Name   string     `json:"name"`
	Kind   SlotKind   `json:"kind"`
	Widget WidgetKind `json:"widget,omitempty"`
}

// LabelCoordinate is where a flat-form value gets stamped. X is the
// insertion point in PDF points from the page's left edge; BaselineY is
// the anchor word's vertical position in PDF space (origin bottom-left).
type LabelCoordinate struct {
	Page      int     `json:"page"`
	X         float64 `json:"x"`
	BaselineY float64 `json:"baseline_y"`
}

// InspectResult describes the fillable surface of a form
type InspectResult struct {
	Slots       []FormSlot `json:"slots"`
	Interactive bool       `json:"interactive"`
	Pages       int        `json:"pages"`
}

// FillResult is the outcome of a fill operation. Output always holds a
// complete document, even when nothing could be written into it.
type FillResult struct {
	Output  []byte   `json:"-"`
	Filled  []string `json:"filled"`
	Skipped []string `json:"skipped"`
}

// DirectoryEntry describes one form file found in the forms directory
type DirectoryEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}
