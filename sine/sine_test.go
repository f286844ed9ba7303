package sine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/aim/indent"
	"pipelined.dev/aim/node"
	"pipelined.dev/aim/port"
	"pipelined.dev/aim/sine"
)

var env = node.Environment{BufferSize: 8, SampleRate: 44100}

func build(t *testing.T, text string) (*node.Definition, node.Node) {
	t.Helper()
	tree, err := indent.Parse(text)
	require.NoError(t, err)
	def := node.NewDefinition("sine", "id1", tree.Blocks[0])
	n := sine.New(def)
	require.NoError(t, n.Init(env))
	return def, n
}

func TestSine(t *testing.T) {
	def, n := build(t, "sine id1\n\tfrequency 440")
	table := port.Table{"id1": def.Ports}

	// two frames to check phase continuity.
	for frame := 0; frame < 2; frame++ {
		holds, err := n.Process("id1", env, table)
		require.NoError(t, err)
		assert.Equal(t, []port.Hold{{Ref: port.Ref{Node: "id1", Outlet: "out"}, Voice: 0}}, holds)

		out := table.Own("id1", "out")
		require.Equal(t, 1, out.Voices())
		require.Equal(t, env.BufferSize, len(out.Signal[0]))
		for i, v := range out.Signal[0] {
			pos := frame*env.BufferSize + i
			expected := math.Sin(2 * math.Pi * 440 * float64(pos) / float64(env.SampleRate))
			assert.InDelta(t, expected, v, 1e-9)
		}
	}
}

func TestSineParameters(t *testing.T) {
	tests := []struct {
		text      string
		frequency float64
		amplitude float64
		errors    [][]string
	}{
		{
			text:      "sine id1\n\tvolume 1",
			frequency: sine.DefaultFrequency,
			amplitude: 1,
			errors:    [][]string{{node.MsgUnknownParameter}},
		},
		{
			text:      "sine id1\n\tfrequency 100\n\tamplitude 0.5",
			frequency: 100,
			amplitude: 0.5,
			errors:    [][]string{nil, nil},
		},
		{
			text:      "sine id1\n\tfrequency high",
			frequency: sine.DefaultFrequency,
			amplitude: 1,
			errors:    [][]string{{node.MsgInvalidValue}},
		},
	}
	for _, test := range tests {
		def, n := build(t, test.text)
		s := n.(*sine.Sine)
		assert.Equal(t, test.frequency, s.Frequency, test.text)
		assert.Equal(t, test.amplitude, s.Amplitude, test.text)
		for i, c := range def.Block.Children {
			assert.Equal(t, test.errors[i], c.Errors, test.text)
		}
	}
}

func TestSineConnected(t *testing.T) {
	def, n := build(t, "sine id1\n\tfrequency <- lfo:out")
	require.Equal(t, 1, len(def.Links))

	lfo := port.New()
	freq := lfo.Outlet("out", port.Signal)
	freq.SetVoices(2, env.BufferSize)
	for i := range freq.Signal[0] {
		freq.Signal[0][i] = 0
		freq.Signal[1][i] = float64(env.SampleRate) / 4
	}
	require.NoError(t, def.Ports.Connect("frequency", def.Links[0].Producer))
	table := port.Table{"lfo": lfo, "id1": def.Ports}

	holds, err := n.Process("id1", env, table)
	require.NoError(t, err)
	assert.Equal(t, 4, len(holds))

	out := table.Own("id1", "out")
	require.Equal(t, 2, out.Voices())
	for _, v := range out.Signal[0] {
		assert.Equal(t, 0.0, v)
	}
	// quarter turn per sample: 0, 1, 0, -1, ...
	expected := []float64{0, 1, 0, -1, 0, 1, 0, -1}
	for i, v := range out.Signal[1] {
		assert.InDelta(t, expected[i], v, 1e-9)
	}

	// voices follow the producer.
	freq.SetVoices(1, env.BufferSize)
	_, err = n.Process("id1", env, table)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Voices())
}

func TestSineUnsupportedInput(t *testing.T) {
	def, n := build(t, "sine id1\n\tfrequency <- pan:out")
	pan := port.New()
	pan.AudioOutlet("out", 2).SetVoices(1, env.BufferSize)
	require.NoError(t, def.Ports.Connect("frequency", def.Links[0].Producer))

	_, err := n.Process("id1", env, port.Table{"pan": pan, "id1": def.Ports})
	assert.ErrorIs(t, err, port.ErrUnsupportedKind)
}
