package diffuser_test

import (
	"fmt"

	"github.com/cwbudde/algo-diffuser/dsp/core"
	"github.com/cwbudde/algo-diffuser/dsp/effects/diffuser"
)

func ExampleDynamicMix() {
	for _, env := range []float32{-40, -30, -24, -18, -6} {
		fmt.Printf("%.0f dB -> %.2f\n", env, diffuser.DynamicMix(env, -30))
	}

	// Output:
	// -40 dB -> 0.00
	// -30 dB -> 0.00
	// -24 dB -> 0.50
	// -18 dB -> 1.00
	// -6 dB -> 1.00
}

func ExampleProcessor() {
	p, err := diffuser.NewProcessor(diffuser.WithProcessorOptions(
		core.WithSampleRate(44100),
		core.WithChannels(1),
	))
	if err != nil {
		panic(err)
	}

	buf := make([]float32, 256)
	p.ProcessBlock([][]float32{buf}, diffuser.DefaultParams())

	fmt.Println(p.Channels(), p.LastPeak(0))

	// Output:
	// 1 0
}
