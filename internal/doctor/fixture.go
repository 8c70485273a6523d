package doctor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dshills/prdoctor/internal/gitctx"
	"github.com/dshills/prdoctor/internal/review"
	"github.com/dshills/prdoctor/internal/scoring"
)

// Fixture is simulated PR input.
type Fixture struct {
	Stats scoring.Stats
	Diffs []review.Diff
}

// BuiltinFixture is a three-file PR touching auth code and its test.
func BuiltinFixture() Fixture {
	return Fixture{
		Stats: scoring.Stats{
			ChangedFiles: 3,
			Additions:    50,
			Deletions:    10,
			Files:        []string{"src/auth.py", "tests/test_auth.py"},
		},
		Diffs: []review.Diff{
			{
				Filename:  "src/auth.py",
				Status:    "modified",
				Additions: 38,
				Deletions: 10,
				Patch:     "@@ -1,4 +1,6 @@\n import os\n-def login(user, password):\n-    return check(user, password)\n+def login(user, password, otp=None):\n+    if otp is None:\n+        raise ValueError(\"otp required\")\n+    return check(user, password) and verify_otp(user, otp)",
			},
			{
				Filename:  "tests/test_auth.py",
				Status:    "added",
				Additions: 12,
				Patch:     "@@ -0,0 +1,4 @@\n+def test_login_requires_otp():\n+    with pytest.raises(ValueError):\n+        login(\"u\", \"p\")\n+",
			},
		},
	}
}

// fixtureFile mirrors the pull_request payload: top-level counts plus the
// changed files under "files" or "diffs".
type fixtureFile struct {
	ChangedFiles *int          `json:"changed_files"`
	Additions    int           `json:"additions"`
	Deletions    int           `json:"deletions"`
	Files        []review.Diff `json:"files"`
	Diffs        []review.Diff `json:"diffs"`
}

// LoadFixture reads a JSON fixture. When changed_files is omitted it is
// taken from the number of listed files.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("reading fixture: %w", err)
	}
	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parsing fixture %s: %w", path, err)
	}

	diffs := append(f.Files, f.Diffs...)
	stats := scoring.Stats{Additions: f.Additions, Deletions: f.Deletions, ChangedFiles: len(diffs)}
	if f.ChangedFiles != nil {
		stats.ChangedFiles = *f.ChangedFiles
	}
	for _, d := range diffs {
		stats.Files = append(stats.Files, d.Filename)
	}
	return Fixture{Stats: stats, Diffs: diffs}, nil
}

func fromChange(c gitctx.Change) Fixture {
	return Fixture{Stats: c.Stats, Diffs: c.Diffs}
}
