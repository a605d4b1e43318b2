package respan_test

import (
	"fmt"
	"os"

	"github.com/tsawler/respan"
	"github.com/tsawler/respan/inspect"
	"github.com/tsawler/respan/model"
	"github.com/tsawler/respan/selector"
)

// Example_resolve shows locating a span by its text.
func Example_resolve() {
	doc, err := respan.FromMarkdown([]byte("# Quarterly Report\n\nStatus: **Draft**"))
	if err != nil {
		fmt.Println(err)
		return
	}

	c, err := doc.Resolve(selector.Text("Draft"))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(c.ID(), c.Text, c.Style.Bold)
}

// Example_replace shows queueing, applying and saving replacements.
func Example_replace() {
	out, err := os.Create("report.tiff")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer out.Close()

	doc, err := respan.FromMarkdown([]byte("Status: **Draft**"), respan.WithOutput(out))
	if err != nil {
		fmt.Println(err)
		return
	}

	_, err = doc.Replace(selector.Text("Draft")).
		With("Final").
		Padding(0.5).
		Align(model.AlignCenter).
		Color("#006400").
		Submit()
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, o := range doc.ApplyAll() {
		fmt.Println(o.ID, o.State, o.Err)
	}
	if err := doc.Save(); err != nil {
		fmt.Println(err)
	}
}

// Example_occurrence shows picking one of several matches.
func Example_occurrence() {
	doc, err := respan.FromMarkdown([]byte("Total\n\nSubtotal\n\nTotal"))
	if err != nil {
		fmt.Println(err)
		return
	}

	all, _ := doc.Find(selector.Text("Total").CaseInsensitive())
	second, err := doc.Resolve(selector.Text("Total").CaseInsensitive().Occurrence(1))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(all), second.ID())
}

// Example_inspect shows exporting the container payload as Markdown.
func Example_inspect() {
	doc, err := respan.FromHTML([]byte(`<h1>Invoice</h1><p>Amount due: <b>$120</b></p>`))
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := doc.Export(os.Stdout, inspect.ExportFormatMarkdown); err != nil {
		fmt.Println(err)
	}
}
