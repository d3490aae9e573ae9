package graph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noFinal = logZero

func twoStateGraph() *Graph {
	return &Graph{
		Start: 0,
		Arcs: [][]Arc{
			{{ILabel: 1, OLabel: 7, Weight: -0.5, Next: 1}},
			{{ILabel: 1, Next: 1}},
		},
		Final: []float64{noFinal, 0},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, twoStateGraph().Validate())

	g := twoStateGraph()
	g.Arcs[0][0].Next = 9
	assert.Error(t, g.Validate(), "out-of-range destination accepted")

	g = twoStateGraph()
	g.Start = 5
	assert.Error(t, g.Validate(), "out-of-range start accepted")

	g = twoStateGraph()
	g.Final = g.Final[:1]
	assert.Error(t, g.Validate(), "short final vector accepted")

	assert.Error(t, (&Graph{}).Validate(), "empty graph accepted")
}

func TestFinality(t *testing.T) {
	g := twoStateGraph()
	assert.False(t, g.IsFinal(0))
	assert.True(t, g.IsFinal(1))
	assert.Equal(t, 0.0, g.FinalWeight(1))
}

func TestReadWriteRoundTrip(t *testing.T) {
	g := twoStateGraph()
	var buf bytes.Buffer
	require.NoError(t, g.Write(&buf))

	loaded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Start, loaded.Start)
	assert.Equal(t, g.Arcs, loaded.Arcs)
	assert.Equal(t, g.Final, loaded.Final)
}

func TestSymbolTable(t *testing.T) {
	src := `# words
<eps> 0
hello 1
world 2
`
	st, err := LoadSymbolTable(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "hello", st.Find(1))
	assert.Equal(t, "<unk#9>", st.Find(9))
	assert.Equal(t, "hello world", st.Render([]int{1, 2}))
}

func TestSymbolTableRejectsMalformedLine(t *testing.T) {
	_, err := LoadSymbolTable(strings.NewReader("hello\n"))
	assert.Error(t, err)
	_, err = LoadSymbolTable(strings.NewReader("hello x\n"))
	assert.Error(t, err)
}
