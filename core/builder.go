package core

import (
	"io"
	"os"

	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new cores.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	out    OutputSink
}

// NewBuilder returns a builder that prints to stdout at 1 GHz.
func NewBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
		out:  WriterSink{W: os.Stdout},
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithOutput sets where print instructions write.
func (b Builder) WithOutput(w io.Writer) Builder {
	b.out = WriterSink{W: w}
	return b
}

// WithSink sets the sink that receives printed values.
func (b Builder) WithSink(sink OutputSink) Builder {
	b.out = sink
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	if b.engine == nil {
		panic("core builder requires an engine")
	}

	c := &Core{
		emu: instEmulator{out: b.out},
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}
