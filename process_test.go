package aim_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/aim"
	"pipelined.dev/aim/mock"
	"pipelined.dev/aim/node"
	"pipelined.dev/aim/out"
	"pipelined.dev/aim/port"
)

var env = node.Environment{BufferSize: 8, SampleRate: 44100}

func TestProcessExample(t *testing.T) {
	m, annotated, err := aim.Parse("sine\n\tfrequency 440\nout\n\tin <- id1:out\n")
	require.NoError(t, err)
	assert.Equal(t, "sine id1\n\tfrequency 440\nout id2\n\tin <- id1:out\n", annotated)
	require.NoError(t, m.Plan())
	assert.Equal(t, []string{"id1", "id2"}, m.Order)
	require.NoError(t, m.Init(env))

	f, err := m.Process(env)
	require.NoError(t, err)

	voices := m.Ports.Own("id1", "out").Signal
	require.Equal(t, 1, len(voices))
	require.Equal(t, env.BufferSize, len(voices[0]))
	step := 2 * math.Pi * 440 / float64(env.SampleRate)
	for i, v := range voices[0] {
		assert.InDelta(t, math.Sin(step*float64(i)), v, 1e-9)
	}
	output := m.Nodes["id2"].(*out.Out).Output()
	assert.Equal(t, voices[0], output[0])

	assert.Equal(t, []port.Hold{{Ref: port.Ref{Node: "id1", Outlet: "out"}, Voice: 0}}, dedup(f.Holds))
	assert.Empty(t, m.Unheld(f))
}

func TestProcessUnknownParameter(t *testing.T) {
	m, annotated, err := aim.Parse("sine id1\n\tvolume 1\n")
	require.NoError(t, err)
	assert.Equal(t, "sine id1\n\tvolume 1  # ERROR: Unknown parameter\n", annotated)
	require.NoError(t, m.Plan())
	require.NoError(t, m.Init(env))
	_, err = m.Process(env)
	require.NoError(t, err)

	step := 2 * math.Pi * 440 / float64(env.SampleRate)
	assert.InDelta(t, math.Sin(step), m.Ports.Own("id1", "out").Signal[0][1], 1e-9)
}

func TestProcessSkipsFailedNodes(t *testing.T) {
	f := mock.Factory{}
	registry := node.Registry{"mock": f.New}
	m, _, err := aim.ParseWith(registry, "mock a\nsaw b\nmock c\n\tin <- b:out\n")
	require.NoError(t, err)
	require.NoError(t, m.Plan())
	require.NoError(t, m.Init(env))
	_, err = m.Process(env)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, f.Calls)
	assert.Equal(t, 1, f.Nodes["a"].Initialized)
}

func TestProcessVoices(t *testing.T) {
	f := mock.Factory{}
	registry := node.Registry{"mock": f.New, "out": out.New}
	m, _, err := aim.ParseWith(registry, "mock a\n\tvalue 0.25\n\tvoices 3\nout b\n\tin <- a:out\n\tchannels 2\n")
	require.NoError(t, err)
	require.NoError(t, m.Plan())
	require.NoError(t, m.Init(env))
	_, err = m.Process(env)
	require.NoError(t, err)

	output := m.Nodes["b"].(*out.Out).Output()
	require.Equal(t, 2, output.NumChannels())
	for c := range output {
		for _, v := range output[c] {
			assert.InDelta(t, 0.75, v, 1e-12)
		}
	}
}

func TestProcessErrors(t *testing.T) {
	errTest := errors.New("test error")
	tests := []struct {
		msg  string
		prep func(m *aim.Module, f *mock.Factory) error
		err  error
	}{
		{
			msg: "not planned",
			prep: func(m *aim.Module, _ *mock.Factory) error {
				return m.Init(env)
			},
			err: aim.ErrInvariant,
		},
		{
			msg: "not initialized",
			prep: func(m *aim.Module, _ *mock.Factory) error {
				return m.Plan()
			},
			err: aim.ErrInvalidState,
		},
		{
			msg: "node error",
			prep: func(m *aim.Module, f *mock.Factory) error {
				f.ErrorOnCall = errTest
				if err := m.Plan(); err != nil {
					return err
				}
				return m.Init(env)
			},
			err: errTest,
		},
		{
			msg: "node added after plan",
			prep: func(m *aim.Module, _ *mock.Factory) error {
				if err := m.Plan(); err != nil {
					return err
				}
				m.Nodes["z"] = nil
				return m.Init(env)
			},
			err: aim.ErrInvariant,
		},
	}
	for _, test := range tests {
		f := mock.Factory{}
		m, _, err := aim.ParseWith(node.Registry{"mock": f.New}, "mock a\nmock b\n\tin <- a:out\n")
		require.NoError(t, err, test.msg)
		require.NoError(t, test.prep(m, &f), test.msg)
		_, err = m.Process(env)
		assert.ErrorIs(t, err, test.err, test.msg)
	}
}

func TestInit(t *testing.T) {
	m, _, err := aim.Parse("sine\n")
	require.NoError(t, err)
	assert.ErrorIs(t, m.Init(node.Environment{}), aim.ErrInvalidEnvironment)
	require.NoError(t, m.Init(env))
	assert.ErrorIs(t, m.Init(env), aim.ErrInvalidState)
}

func dedup(holds []port.Hold) []port.Hold {
	seen := make(map[port.Hold]struct{})
	var result []port.Hold
	for _, h := range holds {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		result = append(result, h)
	}
	return result
}
