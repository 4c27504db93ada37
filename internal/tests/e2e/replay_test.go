package e2e_test

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/walkv/internal/testutil"
	"github.com/julianstephens/walkv/internal/walkv/wal"
)

type step struct {
	del   bool
	key   string
	value string
}

func randomSteps(seed uint64, n int) []step {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	steps := make([]step, n)
	for i := range steps {
		steps[i] = step{
			del:   r.IntN(3) == 0,
			key:   fmt.Sprintf("k%d", r.IntN(8)),
			value: fmt.Sprintf("v%d-%d", i, r.IntN(1000)),
		}
	}
	return steps
}

func fold(steps []step) map[string]string {
	out := map[string]string{}
	for _, st := range steps {
		if st.del {
			delete(out, st.key)
		} else {
			out[st.key] = st.value
		}
	}
	return out
}

func TestReplay_MatchesLeftFold(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			dir := t.TempDir()
			steps := randomSteps(seed, 120)

			s := openAt(t, dir)
			for _, st := range steps {
				if st.del {
					tst.RequireNoError(t, s.Delete([]byte(st.key)))
				} else {
					tst.RequireNoError(t, s.Put([]byte(st.key), []byte(st.value)))
				}
			}
			live := dump(t, s)
			tst.RequireNoError(t, s.Close())

			want := fold(steps)
			tst.RequireDeepEqual(t, live, want)

			reopened := openAt(t, dir)
			tst.RequireDeepEqual(t, dump(t, reopened), want)
		})
	}
}

// Cutting the WAL at any byte yields the state of the whole records before the cut.
func TestReplay_EveryCutPointRecoversPrefix(t *testing.T) {
	steps := randomSteps(42, 12)
	seq := testutil.NewSequence()
	for _, st := range steps {
		if st.del {
			seq.Delete(st.key)
		} else {
			seq.Put(st.key, st.value)
		}
	}
	full := seq.Bytes()

	whole := 0
	for cut := 0; cut <= len(full); cut++ {
		for whole < seq.Frames() && seq.FrameEnd(whole) <= int64(cut) {
			whole++
		}

		dir := t.TempDir()
		testutil.WriteWAL(t, filepath.Join(dir, "wal.log"), full[:cut])

		s := openAt(t, dir)
		tst.RequireDeepEqual(t, dump(t, s), fold(steps[:whole]))

		st, err := s.Stats()
		tst.RequireNoError(t, err)
		wantTail := wal.TailClean
		if whole < seq.Frames() && int64(cut) > seq.FrameOffset(whole) {
			wantTail = wal.TailTruncated
		}
		tst.AssertTrue(t, st.Replay.Tail == wantTail, fmt.Sprintf("cut %d: tail %s, want %s", cut, st.Replay.Tail, wantTail))
		tst.RequireNoError(t, s.Close())
	}
}

func TestReplay_DataDirHoldsOnlyWAL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	s := openAt(t, dir)
	tst.RequireNoError(t, s.Put([]byte("k"), []byte("v")))
	tst.RequireNoError(t, s.Close())

	entries, err := os.ReadDir(dir)
	tst.RequireNoError(t, err)
	tst.AssertTrue(t, len(entries) == 1 && entries[0].Name() == "wal.log", fmt.Sprintf("unexpected entries %v", entries))
}
