package takeoff_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tsawler/takeoff"
	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/trace"
)

// These examples show typical use. They compile but are not run, since
// they need drawings on disk.

func Example_analyze() {
	res, err := takeoff.Open("E-101.pdf").Analyze()
	if err != nil {
		log.Fatal(err)
	}

	for _, run := range res.TrayRuns {
		fmt.Printf("%s: %.1f m, %d lengths, %d drops\n", run.Label(), run.LengthM, run.WholesalerLengths, run.Drops)
	}
	for _, q := range res.Questions {
		fmt.Println("Question:", q.Prompt)
	}
}

func Example_overrides() {
	// The drawing's title block is wrong: force 1:50 on A1 and treat
	// unmarked labels as existing tray.
	res, err := takeoff.Open("E-102.pdf").
		Page(2).
		Scale(50).
		Paper("A1").
		AssumeExisting().
		Analyze()
	_ = res
	_ = err
}

func Example_cable() {
	in := model.DefaultUserInputs()
	in.TrayFilter = "LV"
	in.NumberOfCircuits = 6

	sum, err := takeoff.Open("E-101.pdf").Cable(in)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.1f m of cable, %d drums\n", sum.TotalCableM, sum.CableDrums)
}

func Example_overlay() {
	svg, err := takeoff.Open("E-101.pdf").Overlay()
	if err != nil {
		log.Fatal(err)
	}
	_ = os.WriteFile("E-101.svg", []byte(svg), 0644)
}

func Example_batch() {
	a := takeoff.NewAnalyzer(takeoff.DefaultConfig(), takeoff.WithTracer(trace.TracerFunc(func(e trace.Event) {
		if e.Err != nil {
			log.Printf("%s %s: %v", e.DrawingRef, e.Stage, e.Err)
		}
	})))

	items := []takeoff.BatchItem{{Path: "E-101.pdf"}, {Path: "E-102.pdf"}}
	results, err := a.AnalyzeAll(context.Background(), items, 4)
	if err != nil {
		log.Fatal(err)
	}
	for _, res := range results {
		fmt.Println(res.DrawingRef, len(res.TrayRuns))
	}
}
