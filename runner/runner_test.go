package runner

import (
	"context"
	"strings"
	"testing"

	"dscmd/command"
	"dscmd/datastore"
	"dscmd/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// database/sql keeps a connection opener goroutine until the pool is closed
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func newProcessor(t *testing.T) *processor.Processor {
	t.Helper()
	reg, err := datastore.OpenAll(context.Background(), []datastore.Config{
		{Name: "db", Driver: "sqlite", DSN: ":memory:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return processor.New(reg, t.TempDir())
}

func collect(ch <-chan OutputMsg) []OutputMsg {
	var msgs []OutputMsg
	for m := range ch {
		msgs = append(msgs, m)
	}
	return msgs
}

func TestRunStreamsResults(t *testing.T) {
	proc := newProcessor(t)
	cmds, err := processor.ReadCommands(strings.NewReader(`
RunSql(DataStore="db",Sql="create table t (x integer)")
RunSql(DataStore="db",Sql="insert into t values (1), (2)")
RunSql(DataStore="nope",Sql="select 1")
`))
	require.NoError(t, err)

	out := make(chan OutputMsg)
	go Run(context.Background(), proc, cmds, out)
	msgs := collect(out)

	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.True(t, last.Done)
	assert.Equal(t, "1 of 3 commands failed", last.ErrMsg)
	assert.Equal(t, "3 commands, 1 failed, 0 with warnings", last.Line)

	var lines []string
	for _, m := range msgs[:len(msgs)-1] {
		lines = append(lines, m.Line)
	}
	assert.Contains(t, lines, `[2] RunSql(DataStore="db",Sql="insert into t values (1), (2)")`)
	assert.Contains(t, lines, "    SUCCESS RUN: Statement affected 2 rows.")

	var errLines, failures int
	for _, m := range msgs {
		if m.IsErr {
			errLines++
		}
		if m.Severity == command.SeverityFailure {
			failures++
		}
	}
	assert.Equal(t, 2, errLines, "failed command line and its failure entry")
	assert.Equal(t, errLines, failures)
	assert.Equal(t, command.SeveritySuccess, msgs[0].Severity)
}

func TestRunSuccessHasNoErrMsg(t *testing.T) {
	proc := newProcessor(t)
	cmds, err := processor.ReadCommands(strings.NewReader(`SetProperty(PropertyName="A",PropertyValue="1")`))
	require.NoError(t, err)

	out := make(chan OutputMsg)
	go Run(context.Background(), proc, cmds, out)
	msgs := collect(out)

	require.Len(t, msgs, 2)
	assert.Equal(t, `[1] SetProperty(PropertyName="A",PropertyValue="1")`, msgs[0].Line)
	assert.True(t, msgs[1].Done)
	assert.Empty(t, msgs[1].ErrMsg)
}

func TestRunStopsWhenReaderGoesAway(t *testing.T) {
	proc := newProcessor(t)
	cmds, err := processor.ReadCommands(strings.NewReader(strings.Repeat("SetProperty(PropertyName=\"A\",PropertyValue=\"1\")\n", 20)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan OutputMsg)
	done := make(chan struct{})
	go func() {
		Run(ctx, proc, cmds, out)
		close(done)
	}()

	<-out
	cancel()
	<-done

	_, open := <-out
	assert.False(t, open)
}
