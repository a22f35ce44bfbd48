package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-diffuser/dsp/core"
)

func ExampleEnsureLen() {
	buf := make([]float32, 0, 8)
	buf = core.EnsureLen(buf, 4)

	fmt.Println(len(buf), cap(buf))

	// Output:
	// 4 8
}

func ExampleGainToDB() {
	fmt.Printf("%.1f %.1f\n", core.GainToDB(0.5, core.MinusInfinityDB), core.GainToDB(0, core.MinusInfinityDB))

	// Output:
	// -6.0 -100.0
}
