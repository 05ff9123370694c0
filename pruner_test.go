package stacktrim

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderSink struct{ lines []string }

func (r *recorderSink) OnLine(line string) { r.lines = append(r.lines, line) }

// countingSource records how often the pruner reads its configuration.
type countingSource struct {
	calls int
	value string
	ok    bool
}

func (s *countingSource) Lookup(key string) (string, bool) {
	s.calls++
	return s.value, s.ok
}

func newDefaultPruner() *Pruner {
	return New(WithKeywords("com.myapp", "com.mycorp"))
}

func Test_Pruner(t *testing.T) {
	t.Run("should keep every frame when nothing matches", func(t *testing.T) {
		p := newDefaultPruner()
		in := []string{
			"java.lang.IllegalStateException: boom",
			"\tat org.foo.A.a(A.java:1)",
			"\tat org.foo.B.b(B.java:2)",
		}
		assert.Equal(t, in, p.PruneLines(in))
	})

	t.Run("should collapse frames after the last match into one marker", func(t *testing.T) {
		p := newDefaultPruner()
		in := []string{
			"java.lang.IllegalStateException: boom",
			"\tat com.myapp.Service.call(Service.java:10)",
			"\tat org.springframework.aop.Proxy.invoke(Proxy.java:204)",
			"\tat org.springframework.web.Dispatch.run(Dispatch.java:977)",
			"\tat java.base/java.lang.Thread.run(Thread.java:829)",
		}
		want := []string{
			"java.lang.IllegalStateException: boom",
			"\tat com.myapp.Service.call(Service.java:10)",
			"\t... 3 more",
		}
		assert.Equal(t, want, p.PruneLines(in))
	})

	t.Run("should preserve the leading frames that called into matched code", func(t *testing.T) {
		p := newDefaultPruner()
		in := []string{
			"java.lang.IllegalStateException: boom",
			"\tat java.util.HashMap.hash(HashMap.java:339)",
			"\tat com.myapp.Cache.get(Cache.java:21)",
			"\tat org.server.Worker.run(Worker.java:50)",
			"\tat org.server.Pool.submit(Pool.java:9)",
		}
		want := []string{
			"java.lang.IllegalStateException: boom",
			"\tat java.util.HashMap.hash(HashMap.java:339)",
			"\tat com.myapp.Cache.get(Cache.java:21)",
			"\t... 2 more",
		}
		assert.Equal(t, want, p.PruneLines(in))
	})

	t.Run("should re-arm preservation at every cause header", func(t *testing.T) {
		p := newDefaultPruner()
		in := []string{
			"top: boom",
			"\tat com.myapp.A.a(A.java:1)",
			"\tat org.x.Y.y(Y.java:2)",
			"caused by: inner",
			"\tat org.lib.Deep.deep(Deep.java:3)",
			"\tat com.myapp.B.b(B.java:4)",
			"\tat org.x.Z.z(Z.java:5)",
		}
		want := []string{
			"top: boom",
			"\tat com.myapp.A.a(A.java:1)",
			"\t... 1 more",
			"caused by: inner",
			"\tat org.lib.Deep.deep(Deep.java:3)",
			"\tat com.myapp.B.b(B.java:4)",
			"\t... 1 more",
		}
		assert.Equal(t, want, p.PruneLines(in))
	})

	t.Run("should swallow an existing marker into the dropped count", func(t *testing.T) {
		p := newDefaultPruner()
		in := []string{
			"top: boom",
			"\tat com.myapp.A.a(A.java:1)",
			"\tat org.x.Y.y(Y.java:2)",
			"\t... 17 more",
		}
		want := []string{
			"top: boom",
			"\tat com.myapp.A.a(A.java:1)",
			"\t... 2 more",
		}
		assert.Equal(t, want, p.PruneLines(in))
	})

	t.Run("should keep a marker that sits in a preserved run", func(t *testing.T) {
		p := newDefaultPruner()
		in := []string{
			"caused by: inner",
			"\tat org.a.B.c(B.java:9)",
			"\t... 17 more",
		}
		assert.Equal(t, in, p.PruneLines(in))
	})

	t.Run("should never emit two summary lines in a row", func(t *testing.T) {
		p := newDefaultPruner()
		in := []string{
			"top: boom",
			"\tat com.myapp.A.a(A.java:1)",
			"\tat org.x.Y.y(Y.java:2)",
			"\tat org.x.Y.z(Y.java:3)",
			"\tat com.myapp.B.b(B.java:4)",
			"\tat org.x.Q.q(Q.java:5)",
			"\t... 9 more",
			"caused by: inner",
			"\tat org.pool.P.take(P.java:6)",
			"\tat com.mycorp.C.c(C.java:7)",
			"\t... 4 more",
		}
		out := p.PruneLines(in)
		for i := 1; i < len(out); i++ {
			if isSummaryLine(out[i-1]) && isSummaryLine(out[i]) {
				t.Fatalf("adjacent summary lines at %d: %q, %q", i-1, out[i-1], out[i])
			}
		}
	})

	t.Run("should keep headers unconditionally", func(t *testing.T) {
		p := newDefaultPruner()
		in := []string{
			"first line of a wrapped message",
			"",
			"caused by:",
		}
		assert.Equal(t, in, p.PruneLines(in))
	})

	t.Run("should copy input unchanged when pruning is disabled", func(t *testing.T) {
		p := New(
			WithKeywords("com.myapp"),
			WithSource(MapSource{PruningEnabledKey: "true"}),
		)
		in := []string{
			"java.lang.IllegalStateException: boom",
			"\tat com.myapp.Service.call(Service.java:10)",
			"\tat org.springframework.aop.Proxy.invoke(Proxy.java:204)",
		}
		out := p.PruneLines(in)
		assert.Equal(t, in, out)
	})

	t.Run("should treat only the exact value true as disabled", func(t *testing.T) {
		in := []string{
			"top: boom",
			"\tat com.myapp.A.a(A.java:1)",
			"\tat org.x.Y.y(Y.java:2)",
		}
		for _, tc := range []struct {
			value  string
			prunes bool
		}{
			{"true", false},
			{"TRUE", true},
			{"True", true},
			{"false", true},
			{"1", true},
			{"", true},
		} {
			p := New(WithKeywords("com.myapp"), WithSource(MapSource{PruningEnabledKey: tc.value}))
			out := p.PruneLines(in)
			if tc.prunes {
				assert.Equal(t, "\t... 1 more", out[len(out)-1], "value %q should leave pruning on", tc.value)
			} else {
				assert.Equal(t, in, out, "value %q should turn pruning off", tc.value)
			}
		}
	})

	t.Run("should consult the source on every call", func(t *testing.T) {
		src := &countingSource{}
		p := New(WithKeywords("com.myapp"), WithSource(src))
		in := []string{"top: boom", "\tat org.x.Y.y(Y.java:2)"}

		p.PruneLines(in)
		p.PruneLines(in)
		assert.Equal(t, 2, src.calls)

		// Flipping the source takes effect immediately
		src.value, src.ok = "true", true
		out := p.PruneLines([]string{
			"top: boom",
			"\tat com.myapp.A.a(A.java:1)",
			"\tat org.x.Y.y(Y.java:2)",
		})
		assert.Len(t, out, 3)
	})

	t.Run("should never modify the input slice", func(t *testing.T) {
		p := newDefaultPruner()
		in := []string{
			"top: boom",
			"\tat com.myapp.A.a(A.java:1)",
			"\tat org.x.Y.y(Y.java:2)",
		}
		saved := append([]string(nil), in...)
		p.PruneLines(in)
		assert.Equal(t, saved, in)
	})

	t.Run("should return empty output for empty input", func(t *testing.T) {
		p := newDefaultPruner()
		assert.Empty(t, p.PruneLines(nil))
		assert.Empty(t, p.PruneLines([]string{}))
	})

	t.Run("should pass everything through without a matcher", func(t *testing.T) {
		p := New()
		in := []string{
			"top: boom",
			"\tat org.x.Y.y(Y.java:2)",
			"\tat org.x.Z.z(Z.java:3)",
		}
		assert.Equal(t, in, p.PruneLines(in))
	})
}

func Test_Matchers(t *testing.T) {
	t.Run("should match keywords as substrings case-sensitively", func(t *testing.T) {
		m := Keywords{"com.myapp", "$Proxy"}
		assert.True(t, m.MatchFrame("\tat com.myapp.Service.call(Service.java:10)"))
		assert.True(t, m.MatchFrame("\tat com.sun.proxy.$Proxy42.invoke(Unknown Source)"))
		assert.False(t, m.MatchFrame("\tat COM.MYAPP.Service.call(Service.java:10)"))
		assert.False(t, m.MatchFrame("\tat org.other.Thing.run(Thing.java:1)"))
	})

	t.Run("should support custom matcher functions", func(t *testing.T) {
		p := New(WithMatcher(MatcherFunc(func(line string) bool {
			return len(line) > 40
		})))
		in := []string{
			"top: boom",
			"\tat com.verylongcompanyname.pkg.Cls.method(Cls.java:999)",
			"\tat a.B.c(B.java:1)",
		}
		want := []string{
			"top: boom",
			"\tat com.verylongcompanyname.pkg.Cls.method(Cls.java:999)",
			"\t... 1 more",
		}
		assert.Equal(t, want, p.PruneLines(in))
	})

	t.Run("should support regexp matchers", func(t *testing.T) {
		p := New(WithMatcher(&RegexpMatcher{Pattern: regexp.MustCompile(`com\.(myapp|mycorp)\.`)}))
		in := []string{
			"top: boom",
			"\tat com.mycorp.store.DAO.save(DAO.java:77)",
			"\tat org.x.Y.y(Y.java:2)",
		}
		out := p.PruneLines(in)
		require.Len(t, out, 3)
		assert.Equal(t, "\t... 1 more", out[2])
	})
}

func Benchmark_PruneLines(b *testing.B) {
	p := newDefaultPruner()
	in := make([]string, 0, 64)
	in = append(in, "java.lang.IllegalStateException: boom")
	for i := 0; i < 3; i++ {
		in = append(in, "\tat com.myapp.Service.call(Service.java:10)")
		for j := 0; j < 18; j++ {
			in = append(in, "\tat org.springframework.aop.Proxy.invoke(Proxy.java:204)")
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.PruneLines(in)
	}
}
