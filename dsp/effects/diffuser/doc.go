// Package diffuser implements a dynamic diffusion effect.
//
// Every channel runs its input through a [diffusion.Network], follows the
// envelope of the diffused signal and, once that envelope rises above a
// threshold, blends in more of the diffused signal over a 12 dB knee. A
// static mix and output volume are applied last.
//
// [Processor] owns one [ChannelProcessor] per channel and accepts a
// [Params] snapshot per block. [SharedParams] lets a control goroutine
// update parameters while the audio goroutine processes; the audio path
// only ever reads snapshots.
//
// Usage:
//
//	p, err := diffuser.NewProcessor(diffuser.WithProcessorOptions(core.WithSampleRate(48000)))
//	if err != nil { ... }
//	p.ProcessBlock([][]float32{left, right}, diffuser.DefaultParams())
package diffuser
