package muse_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"muse-go/internal/model"
	"muse-go/internal/muse"
	"muse-go/internal/testutil"
)

func TestMuseService_Tokens(t *testing.T) {
	t.Run("set and open round trip", func(t *testing.T) {
		ts := testutil.NewTestService()

		if err := ts.Service.SetToken("ghp_secret"); err != nil {
			t.Fatalf("SetToken() error = %v", err)
		}
		got, err := ts.Service.Token("")
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if got != "ghp_secret" {
			t.Errorf("Token() = %q, want %q", got, "ghp_secret")
		}
	})

	t.Run("token is not stored in plaintext", func(t *testing.T) {
		ts := testutil.NewTestService()
		ts.Service.SetToken("ghp_secret")

		raw, ok, err := ts.Store.Get("githubToken")
		if err != nil || !ok {
			t.Fatalf("Get(githubToken) = ok=%v, err=%v", ok, err)
		}
		if string(raw) == "ghp_secret" {
			t.Error("token stored without sealing")
		}
	})

	t.Run("no stored token", func(t *testing.T) {
		ts := testutil.NewTestService()

		_, err := ts.Service.Token("")
		if !errors.Is(err, muse.ErrAuth) {
			t.Errorf("Token() error = %v, want ErrAuth", err)
		}
	})

	t.Run("clear removes token and cached profile", func(t *testing.T) {
		ts := testutil.NewTestService()
		ts.Service.SetToken("ghp_secret")
		if _, err := ts.Service.FetchUser("ghp_secret"); err != nil {
			t.Fatalf("FetchUser() error = %v", err)
		}

		if err := ts.Service.ClearToken(); err != nil {
			t.Fatalf("ClearToken() error = %v", err)
		}
		has, _ := ts.Service.HasToken()
		if has {
			t.Error("HasToken() = true after clear")
		}
		user, err := ts.Service.CachedUser()
		if err != nil {
			t.Fatalf("CachedUser() error = %v", err)
		}
		if user != nil {
			t.Errorf("CachedUser() = %+v after clear, want nil", user)
		}
	})
}

func TestMuseService_FetchUser(t *testing.T) {
	t.Run("caches the profile", func(t *testing.T) {
		ts := testutil.NewTestService()

		user, err := ts.Service.FetchUser("tok")
		if err != nil {
			t.Fatalf("FetchUser() error = %v", err)
		}
		if user.Login != "octocat" {
			t.Errorf("Login = %q, want octocat", user.Login)
		}

		cached, err := ts.Service.CachedUser()
		if err != nil {
			t.Fatalf("CachedUser() error = %v", err)
		}
		if cached == nil || cached.Login != "octocat" {
			t.Errorf("CachedUser() = %+v, want the fetched profile", cached)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		ts := testutil.NewTestService()

		_, err := ts.Service.FetchUser("")
		if !errors.Is(err, muse.ErrAuth) {
			t.Errorf("FetchUser() error = %v, want ErrAuth", err)
		}
	})
}

func TestMuseService_ListBranches(t *testing.T) {
	t.Run("returns branch names", func(t *testing.T) {
		ts := testutil.NewTestService()
		ts.Remote.Branches["me/repo"] = []string{"main", "drafts"}

		got := ts.Service.ListBranches("me/repo", "tok")
		if len(got) != 2 || got[0] != "main" {
			t.Errorf("ListBranches() = %v, want [main drafts]", got)
		}
	})

	t.Run("degrades to nil on remote failure", func(t *testing.T) {
		ts := testutil.NewTestService()
		ts.Remote.BranchesErr = errors.New("boom")

		if got := ts.Service.ListBranches("me/repo", "tok"); got != nil {
			t.Errorf("ListBranches() = %v, want nil", got)
		}
	})
}

func TestMuseService_ImportRepository(t *testing.T) {
	t.Run("downloads eligible files and links the project", func(t *testing.T) {
		ts := testutil.NewTestService()
		ts.Remote.AddFile("me/notes", "main", "README.md", "# notes")
		ts.Remote.AddFile("me/notes", "main", "a.md", "alpha")
		ts.Remote.AddFile("me/notes", "main", "sub/b.txt", "beta")
		ts.Remote.AddFile("me/notes", "main", "script.py", "print()")

		res, err := ts.Service.ImportRepository("me/notes", "main", "tok")
		if err != nil {
			t.Fatalf("ImportRepository() error = %v", err)
		}
		if res.Eligible != 3 || res.Downloaded != 3 {
			t.Errorf("result = %+v, want 3 eligible, 3 downloaded", res)
		}
		if res.Relinked {
			t.Error("Relinked = true on first import")
		}

		p := res.Project
		if p.Remote.Repo != "me/notes" || p.Remote.Branch != "main" {
			t.Errorf("Remote = %+v, want me/notes@main", p.Remote)
		}
		if !p.GitData.Initialized {
			t.Error("GitData.Initialized = false, want true")
		}
		if _, ok := p.Files["script.py"]; ok {
			t.Error("ineligible script.py was downloaded")
		}
		if got := p.Files["sub/b.txt"].Content; got != "beta" {
			t.Errorf("sub/b.txt content = %q, want %q", got, "beta")
		}
	})

	t.Run("records a baseline import commit", func(t *testing.T) {
		ts := testutil.NewTestService()
		ts.Remote.AddFile("me/notes", "main", "a.md", "alpha")

		res, err := ts.Service.ImportRepository("me/notes", "main", "tok")
		if err != nil {
			t.Fatalf("ImportRepository() error = %v", err)
		}
		commits, _ := ts.Service.Log(res.Project.ID)
		if len(commits) != 1 {
			t.Fatalf("Log() = %d commits, want 1", len(commits))
		}
		c := commits[0]
		if !c.Import {
			t.Error("Import = false, want true")
		}
		if c.Message != "Import me/notes@main" {
			t.Errorf("Message = %q, want %q", c.Message, "Import me/notes@main")
		}
		if len(c.Files) != 1 {
			t.Errorf("snapshot = %d files, want 1", len(c.Files))
		}
	})

	t.Run("reuses a project already tracking the repo", func(t *testing.T) {
		ts := testutil.NewTestService()
		ts.Remote.AddFile("me/notes", "main", "a.md", "alpha")

		first, err := ts.Service.ImportRepository("me/notes", "main", "tok")
		if err != nil {
			t.Fatalf("first ImportRepository() error = %v", err)
		}
		second, err := ts.Service.ImportRepository("me/notes", "drafts", "tok")
		if err != nil {
			t.Fatalf("second ImportRepository() error = %v", err)
		}
		if !second.Relinked {
			t.Error("Relinked = false on re-import")
		}
		if second.Project.ID != first.Project.ID {
			t.Errorf("re-import created %q, want reuse of %q", second.Project.ID, first.Project.ID)
		}
		if second.Project.Remote.Branch != "drafts" {
			t.Errorf("Branch = %q, want drafts", second.Project.Remote.Branch)
		}
	})

	t.Run("caps downloads at MaxFiles and reports truncation", func(t *testing.T) {
		policy := muse.DefaultSyncPolicy()
		policy.MaxFiles = 2
		ts := testutil.NewTestServiceWithPolicy(policy)
		for i := 0; i < 5; i++ {
			ts.Remote.AddFile("me/big", "main", fmt.Sprintf("f%d.md", i), "x")
		}

		res, err := ts.Service.ImportRepository("me/big", "main", "tok")
		if err != nil {
			t.Fatalf("ImportRepository() error = %v", err)
		}
		if res.Eligible != 5 || res.Downloaded != 2 || res.Truncated != 3 {
			t.Errorf("result = %+v, want 5 eligible, 2 downloaded, 3 truncated", res)
		}
		if len(res.Project.Files) != 2 {
			t.Errorf("project holds %d files, want 2", len(res.Project.Files))
		}
	})

	t.Run("one batch fetches a small repo", func(t *testing.T) {
		ts := testutil.NewTestService()
		for i := 0; i < 3; i++ {
			ts.Remote.AddFile("me/small", "main", fmt.Sprintf("f%d.md", i), "x")
		}

		res, err := ts.Service.ImportRepository("me/small", "main", "tok")
		if err != nil {
			t.Fatalf("ImportRepository() error = %v", err)
		}
		if res.Downloaded != 3 {
			t.Errorf("Downloaded = %d, want 3", res.Downloaded)
		}
		if ts.Remote.BlobCalls != 3 {
			t.Errorf("BlobCalls = %d, want 3", ts.Remote.BlobCalls)
		}
	})

	t.Run("failed blob fetches are skipped, not fatal", func(t *testing.T) {
		ts := testutil.NewTestService()
		ts.Remote.AddFile("me/notes", "main", "a.md", "alpha")
		ts.Remote.BlobErr = errors.New("boom")

		res, err := ts.Service.ImportRepository("me/notes", "main", "tok")
		if err != nil {
			t.Fatalf("ImportRepository() error = %v", err)
		}
		if res.Failed != 1 || res.Downloaded != 0 {
			t.Errorf("result = %+v, want 1 failed, 0 downloaded", res)
		}
	})

	t.Run("empty token fails before any network call", func(t *testing.T) {
		ts := testutil.NewTestService()

		_, err := ts.Service.ImportRepository("me/notes", "main", "")
		if !errors.Is(err, muse.ErrAuth) {
			t.Errorf("ImportRepository() error = %v, want ErrAuth", err)
		}
		if ts.Remote.BlobCalls != 0 {
			t.Errorf("BlobCalls = %d, want 0", ts.Remote.BlobCalls)
		}
	})
}

func TestMuseService_Push(t *testing.T) {
	imported := func(t *testing.T) (*testutil.TestService, string) {
		t.Helper()
		ts := testutil.NewTestService()
		ts.Remote.AddFile("me/notes", "main", "a.md", "alpha")
		ts.Remote.AddFile("me/notes", "main", "b.md", "beta")
		res, err := ts.Service.ImportRepository("me/notes", "main", "tok")
		if err != nil {
			t.Fatalf("ImportRepository() error = %v", err)
		}
		return ts, res.Project.ID
	}

	t.Run("uploads the latest commit and stamps it", func(t *testing.T) {
		ts, id := imported(t)
		ts.Service.SaveFile(id, "a.md", "edited")
		if _, err := ts.Service.Commit(id, "edits", ""); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		pushed, err := ts.Service.Push(id, "tok")
		if err != nil {
			t.Fatalf("Push() error = %v", err)
		}
		if pushed != 2 {
			t.Errorf("Push() = %d files, want 2", pushed)
		}
		if len(ts.Remote.Puts) != 2 {
			t.Fatalf("remote received %d puts, want 2", len(ts.Remote.Puts))
		}
		// Deterministic path order.
		if ts.Remote.Puts[0].Path != "a.md" || ts.Remote.Puts[1].Path != "b.md" {
			t.Errorf("put order = %s, %s, want a.md then b.md", ts.Remote.Puts[0].Path, ts.Remote.Puts[1].Path)
		}
		if got := ts.Remote.Puts[0].Request.Message; got != "edits" {
			t.Errorf("put message = %q, want %q", got, "edits")
		}

		commits, _ := ts.Service.Log(id)
		if !commits[0].Pushed || commits[0].PushedBranch != "main" {
			t.Errorf("latest commit = %+v, want pushed to main", commits[0])
		}
	})

	t.Run("attaches the remote sha for existing files", func(t *testing.T) {
		ts, id := imported(t)
		ts.Remote.ContentSHAs["me/notes@main/a.md"] = "abc123"
		ts.Service.SaveFile(id, "a.md", "edited")
		if _, err := ts.Service.Commit(id, "edits", ""); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		if _, err := ts.Service.Push(id, "tok"); err != nil {
			t.Fatalf("Push() error = %v", err)
		}
		var put *testutil.PutRecord
		for i := range ts.Remote.Puts {
			if ts.Remote.Puts[i].Path == "a.md" {
				put = &ts.Remote.Puts[i]
			}
		}
		if put == nil {
			t.Fatal("no put recorded for a.md")
		}
		if put.Request.SHA != "abc123" {
			t.Errorf("SHA = %q, want abc123", put.Request.SHA)
		}
	})

	t.Run("sha lookup failure degrades to a create", func(t *testing.T) {
		ts, id := imported(t)
		ts.Remote.SHAErr = errors.New("boom")
		ts.Service.SaveFile(id, "a.md", "edited")
		if _, err := ts.Service.Commit(id, "edits", ""); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		if _, err := ts.Service.Push(id, "tok"); err != nil {
			t.Fatalf("Push() error = %v", err)
		}
		if got := ts.Remote.Puts[0].Request.SHA; got != "" {
			t.Errorf("SHA = %q, want empty", got)
		}
	})

	t.Run("stops at the first failing file", func(t *testing.T) {
		ts, id := imported(t)
		ts.Service.SaveFile(id, "a.md", "edited")
		if _, err := ts.Service.Commit(id, "edits", ""); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		ts.Remote.PutErr = errors.New("boom")

		pushed, err := ts.Service.Push(id, "tok")
		if err == nil {
			t.Fatal("Push() succeeded, want error")
		}
		if pushed != 0 {
			t.Errorf("Push() = %d files before failure, want 0", pushed)
		}
		commits, _ := ts.Service.Log(id)
		if commits[0].Pushed {
			t.Error("commit stamped pushed despite failure")
		}
	})

	t.Run("no token fails before any network call", func(t *testing.T) {
		ts, id := imported(t)

		_, err := ts.Service.Push(id, "")
		if !errors.Is(err, muse.ErrAuth) {
			t.Errorf("Push() error = %v, want ErrAuth", err)
		}
		if len(ts.Remote.Puts) != 0 {
			t.Errorf("remote received %d puts, want 0", len(ts.Remote.Puts))
		}
	})

	t.Run("unlinked project", func(t *testing.T) {
		ts := testutil.NewTestService()
		p, _ := ts.Service.CreateProject("Local", "")

		_, err := ts.Service.Push(p.ID, "tok")
		if !errors.Is(err, muse.ErrNotLinked) {
			t.Errorf("Push() error = %v, want ErrNotLinked", err)
		}
	})

	t.Run("empty commit log", func(t *testing.T) {
		ts, id := imported(t)
		if err := ts.Service.InitLog(id); err != nil {
			t.Fatalf("InitLog() error = %v", err)
		}

		_, err := ts.Service.Push(id, "tok")
		if !errors.Is(err, muse.ErrNoCommits) {
			t.Errorf("Push() error = %v, want ErrNoCommits", err)
		}
	})
}

func TestMuseService_SwitchBranch(t *testing.T) {
	imported := func(t *testing.T) (*testutil.TestService, string) {
		t.Helper()
		ts := testutil.NewTestService()
		ts.Remote.AddFile("me/notes", "main", "a.md", "alpha")
		ts.Remote.AddFile("me/notes", "main", "only-main.md", "m")
		res, err := ts.Service.ImportRepository("me/notes", "main", "tok")
		if err != nil {
			t.Fatalf("ImportRepository() error = %v", err)
		}
		return ts, res.Project.ID
	}

	t.Run("replaces the file map with the new branch", func(t *testing.T) {
		ts, id := imported(t)
		ts.Remote.AddFile("me/notes", "drafts", "a.md", "draft alpha")
		ts.Remote.AddFile("me/notes", "drafts", "only-drafts.md", "d")

		res, err := ts.Service.SwitchBranch(id, "drafts", "tok")
		if err != nil {
			t.Fatalf("SwitchBranch() error = %v", err)
		}
		p := res.Project
		if p.Remote.Branch != "drafts" {
			t.Errorf("Branch = %q, want drafts", p.Remote.Branch)
		}
		if _, ok := p.Files["only-main.md"]; ok {
			t.Error("only-main.md survived the switch")
		}
		if got := p.Files["a.md"].Content; got != "draft alpha" {
			t.Errorf("a.md content = %q, want %q", got, "draft alpha")
		}
	})

	t.Run("an empty branch leaves an empty map", func(t *testing.T) {
		ts, id := imported(t)

		res, err := ts.Service.SwitchBranch(id, "empty", "tok")
		if err != nil {
			t.Fatalf("SwitchBranch() error = %v", err)
		}
		if len(res.Project.Files) != 0 {
			t.Errorf("project holds %d files after switch, want 0", len(res.Project.Files))
		}
	})

	t.Run("keeps the active file when it survives", func(t *testing.T) {
		ts, id := imported(t)
		if _, err := ts.Service.OpenFile(id, "a.md"); err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}
		ts.Remote.AddFile("me/notes", "drafts", "a.md", "draft alpha")

		if _, err := ts.Service.SwitchBranch(id, "drafts", "tok"); err != nil {
			t.Fatalf("SwitchBranch() error = %v", err)
		}
		sess, _ := ts.Service.Session()
		if sess.CurrentFile != "a.md" {
			t.Errorf("CurrentFile = %q, want a.md", sess.CurrentFile)
		}
	})

	t.Run("clears the active file when it does not survive", func(t *testing.T) {
		ts, id := imported(t)
		if _, err := ts.Service.OpenFile(id, "only-main.md"); err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}

		if _, err := ts.Service.SwitchBranch(id, "empty", "tok"); err != nil {
			t.Fatalf("SwitchBranch() error = %v", err)
		}
		sess, _ := ts.Service.Session()
		if sess.CurrentFile != "" {
			t.Errorf("CurrentFile = %q, want empty", sess.CurrentFile)
		}
	})

	t.Run("unlinked project", func(t *testing.T) {
		ts := testutil.NewTestService()
		p, _ := ts.Service.CreateProject("Local", "")

		_, err := ts.Service.SwitchBranch(p.ID, "main", "tok")
		if !errors.Is(err, muse.ErrNotLinked) {
			t.Errorf("SwitchBranch() error = %v, want ErrNotLinked", err)
		}
	})
}

func TestMuseService_CheckSwitch(t *testing.T) {
	ts := testutil.NewTestService()
	ts.Remote.AddFile("me/notes", "main", "a.md", "alpha")
	res, err := ts.Service.ImportRepository("me/notes", "main", "tok")
	if err != nil {
		t.Fatalf("ImportRepository() error = %v", err)
	}
	id := res.Project.ID

	ts.Service.SaveFile(id, "a.md", "edited")
	if _, err := ts.Service.Commit(id, "local work", ""); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	check, err := ts.Service.CheckSwitch(id)
	if err != nil {
		t.Fatalf("CheckSwitch() error = %v", err)
	}
	// The import baseline and the local commit are both unpushed.
	if check.UnpushedCommits != 2 {
		t.Errorf("UnpushedCommits = %d, want 2", check.UnpushedCommits)
	}
	if check.ActiveFile != "a.md" {
		t.Errorf("ActiveFile = %q, want a.md", check.ActiveFile)
	}
}

func TestMuseService_MigrateLegacy(t *testing.T) {
	seedLegacy := func(t *testing.T, ts *testutil.TestService) {
		t.Helper()
		files := map[string]model.FileRecord{
			"old.md": {Filename: "old.md", Content: "legacy"},
		}
		rawFiles, _ := json.Marshal(files)
		if err := ts.Store.Set("files", rawFiles); err != nil {
			t.Fatalf("Set(files) error = %v", err)
		}
		gitData := model.CommitLog{Initialized: true, Commits: []model.Commit{{ID: "c1", Message: "old"}}}
		rawGit, _ := json.Marshal(gitData)
		if err := ts.Store.Set("gitData", rawGit); err != nil {
			t.Fatalf("Set(gitData) error = %v", err)
		}
	}

	t.Run("converts the single-project schema", func(t *testing.T) {
		ts := testutil.NewTestService()
		seedLegacy(t, ts)

		if err := ts.Service.MigrateLegacy(); err != nil {
			t.Fatalf("MigrateLegacy() error = %v", err)
		}

		p, err := ts.Service.GetProject(muse.DefaultProjectID)
		if err != nil {
			t.Fatalf("GetProject(default) error = %v", err)
		}
		if got := p.Files["old.md"].Content; got != "legacy" {
			t.Errorf("migrated content = %q, want %q", got, "legacy")
		}
		if len(p.GitData.Commits) != 1 {
			t.Errorf("migrated commits = %d, want 1", len(p.GitData.Commits))
		}

		// Legacy keys are consumed.
		if _, ok, _ := ts.Store.Get("files"); ok {
			t.Error("legacy files key survived migration")
		}
		if _, ok, _ := ts.Store.Get("gitData"); ok {
			t.Error("legacy gitData key survived migration")
		}
	})

	t.Run("does nothing when projects already exist", func(t *testing.T) {
		ts := testutil.NewTestService()
		if _, err := ts.Service.CreateProject("Existing", ""); err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
		seedLegacy(t, ts)

		if err := ts.Service.MigrateLegacy(); err != nil {
			t.Fatalf("MigrateLegacy() error = %v", err)
		}
		if _, err := ts.Service.GetProject(muse.DefaultProjectID); err == nil {
			t.Error("migration ran despite an existing projects key")
		}
	})

	t.Run("does nothing on a fresh store", func(t *testing.T) {
		ts := testutil.NewTestService()

		if err := ts.Service.MigrateLegacy(); err != nil {
			t.Fatalf("MigrateLegacy() error = %v", err)
		}
		out, _ := ts.Service.ListProjects()
		if len(out) != 0 {
			t.Errorf("ListProjects() = %d projects, want 0", len(out))
		}
	})
}
