package tracing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanTree(t *testing.T) {
	ctx, root := Start(context.Background(), "run", "trace-1")
	assert.Same(t, root, FromContext(ctx))

	_, build := StartChild(ctx, "build")
	build.SetAttr("files", 3)
	time.Sleep(time.Millisecond)
	build.End()
	firstDuration := build.Duration()
	build.End()
	assert.Equal(t, firstDuration, build.Duration())
	assert.Positive(t, firstDuration)

	_, q := StartChild(ctx, "query")
	q.EndErr(errors.New("missing file"))
	root.End()

	children := root.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "trace-1", children[0].TraceID)
	assert.EqualError(t, children[1].Err(), "missing file")

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewTextHandler(&buf, nil)), slog.LevelInfo)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "span=run")
	assert.Contains(t, lines[1], "files=3")
	assert.Contains(t, lines[1], "depth=1")
	assert.Contains(t, lines[2], `error="missing file"`)
}

func TestOrphanChild(t *testing.T) {
	ctx, span := StartChild(context.Background(), "alone")
	assert.Empty(t, span.TraceID)
	assert.Same(t, span, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
