package nodeset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"node1", []string{"node1"}},
		{"login", []string{"login"}},
		{"node[1-3]", []string{"node1", "node2", "node3"}},
		{"node[01-03]", []string{"node01", "node02", "node03"}},
		{"node[1-2,5]", []string{"node1", "node2", "node5"}},
		{"n[1-9/4]", []string{"n1", "n5", "n9"}},
		{"cn[1-2]-ib", []string{"cn1-ib", "cn2-ib"}},
		{"r[1-2]n[1-2]", []string{"r1n1", "r1n2", "r2n1", "r2n2"}},
		{"node[1-3],node2,node[2-4]", []string{"node1", "node2", "node3", "node4"}},
		{"node[08-12]", []string{"node08", "node09", "node10", "node11", "node12"}},
		{" a1 , b2 ", []string{"a1", "b2"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := Expand(tt.pattern)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
			assert.Len(t, got, len(tt.want))
		})
	}
}

func TestExpandErrors(t *testing.T) {
	for _, pattern := range []string{
		"",
		"node[1-",
		"node]1[",
		"node[3-1]",
		"node[a-b]",
		"node[]",
		"node[[1-2]]",
		"a,,b",
		"no de",
		"node[1-4/0]",
		"host/1",
	} {
		t.Run(pattern, func(t *testing.T) {
			_, err := Expand(pattern)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr), "expected SyntaxError, got %T", err)
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		hosts []string
		want  string
	}{
		{"empty", nil, ""},
		{"single", []string{"node5"}, "node5"},
		{"range", []string{"node3", "node1", "node2", "node5"}, "node[1-3,5]"},
		{"padded", []string{"node01", "node02", "node03"}, "node[01-03]"},
		{"padded across width", []string{"node08", "node09", "node10", "node11"}, "node[08-11]"},
		{"suffix", []string{"cn1-ib", "cn2-ib"}, "cn[1-2]-ib"},
		{"mixed", []string{"svc256", "node2", "cmp4329", "node1", "login"}, "cmp4329,login,node[1-2],svc256"},
		{"duplicates", []string{"node1", "node1", "node2"}, "node[1-2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.hosts))
		})
	}
}

func TestStringSortsGroupsByPrefix(t *testing.T) {
	ns, err := Parse("cmp4329,svc256,node[1-50],node[51-998]")
	require.NoError(t, err)
	assert.Equal(t, "cmp4329,node[1-998],svc256", ns.String())
	assert.Equal(t, 1000, ns.Len())
}

func TestFoldExpandRoundTrip(t *testing.T) {
	for _, pattern := range []string{
		"node[1-50],node[52-60]",
		"node[001-120]",
		"r[1-3]n[01-12]",
		"cn[1-4/2]-ib,login,node[7-9]",
		"x[1-2]5",
		"a9,a10,a[011-013]",
	} {
		t.Run(pattern, func(t *testing.T) {
			hosts, err := Expand(pattern)
			require.NoError(t, err)

			folded := Fold(hosts)
			again, err := Expand(folded)
			require.NoError(t, err, "folded pattern %q must parse", folded)
			assert.ElementsMatch(t, hosts, again, "folded pattern %q", folded)
		})
	}
}

func TestParseLimit(t *testing.T) {
	_, err := ParseLimit("node[1-150000]", 100000)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = ParseLimit("r[1-1000]n[1-1000]", 100000)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = ParseLimit("a[1-60000],b[1-60000]", 100000)
	assert.ErrorIs(t, err, ErrTooLarge)

	ns, err := ParseLimit("node[1-100000]", 100000)
	require.NoError(t, err)
	assert.Equal(t, 100000, ns.Len())
	assert.Equal(t, "node[1-100000]", ns.String())
}

func TestContains(t *testing.T) {
	ns, err := Parse("node[01-10],login")
	require.NoError(t, err)

	assert.True(t, ns.Contains("node01"))
	assert.True(t, ns.Contains("node10"))
	assert.True(t, ns.Contains("login"))
	assert.False(t, ns.Contains("node1"))
	assert.False(t, ns.Contains("node11"))
	assert.False(t, ns.Contains("logout"))
}
