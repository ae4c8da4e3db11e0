// slotdump is a small debugging tool that prints the fillable slots of a
// form PDF, the way the agent sees them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marianadeem755/Taxation-agent/internal/pdf"
)

const maxFileSize = 100 * 1024 * 1024

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	verbose      = flag.Bool("verbose", false, "Enable verbose output")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	pdfPath, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", pdfPath, err)
		os.Exit(1)
	}

	// No OCR here; slotdump only looks at the document structure
	service := pdf.NewService(maxFileSize, nil, *verbose)

	result, err := service.Inspect(pdfBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error inspecting form: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(pdfPath, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("slotdump - print the fillable slots of a tax form PDF")
	fmt.Println()
	fmt.Println("Shows whether the document is interactive (AcroForm fields) or flat")
	fmt.Println("(printed labels), and lists every slot the autofill pipeline would see.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -verbose       Enable verbose output")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  slotdump return.pdf")
	fmt.Println("  slotdump -format json forms/it-2.pdf")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  slotdump [OPTIONS] <pdf_file>")
}

// dumpResult is the JSON output shape
type dumpResult struct {
	FilePath    string         `json:"file_path"`
	Interactive bool           `json:"interactive"`
	Pages       int            `json:"pages"`
	SlotCount   int            `json:"slot_count"`
	Slots       []pdf.FormSlot `json:"slots"`
}

func outputResults(path string, result *pdf.InspectResult) error {
	out := dumpResult{
		FilePath:    path,
		Interactive: result.Interactive,
		Pages:       result.Pages,
		SlotCount:   len(result.Slots),
		Slots:       result.Slots,
	}

	switch *outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case "text":
		return outputText(out)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputText(out dumpResult) error {
	fmt.Printf("File: %s\n", out.FilePath)
	fmt.Printf("Pages: %d\n", out.Pages)
	if out.Interactive {
		fmt.Println("Type: interactive (AcroForm)")
	} else {
		fmt.Println("Type: flat (printed labels)")
	}

	if out.SlotCount == 0 {
		fmt.Println("\nNo fillable slots detected")
		return nil
	}

	fmt.Printf("\n%d slot(s):\n", out.SlotCount)
	for i, slot := range out.Slots {
		fmt.Printf("[%d] %s\n", i+1, slot.Name)
		if slot.Widget != "" {
			fmt.Printf("    Widget: %s\n", slot.Widget)
		}
	}
	return nil
}

func init() {
	flag.Usage = func() {
		printHelp()
	}
}
