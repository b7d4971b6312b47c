package verification_test

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wikisphere/userverify/internal/audit"
	"github.com/wikisphere/userverify/internal/database"
	"github.com/wikisphere/userverify/internal/documents"
	uverrors "github.com/wikisphere/userverify/internal/errors"
	"github.com/wikisphere/userverify/internal/keystore"
	"github.com/wikisphere/userverify/internal/protectedkey"
	"github.com/wikisphere/userverify/internal/records"
	"github.com/wikisphere/userverify/internal/verification"
)

type fakeGroups struct {
	groups map[string][]string
	calls  int
}

func (f *fakeGroups) UserGroups(username string) ([]string, error) {
	f.calls++
	return f.groups[username], nil
}

type fixture struct {
	svc    *verification.Service
	keys   *keystore.Store
	groups *fakeGroups
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	groups := &fakeGroups{groups: map[string][]string{
		"admin":    {"sysop"},
		"reviewer": {"userverification-admin"},
		"alice":    {"user"},
	}}

	keys := keystore.NewStore(db)
	svc := verification.NewService(
		keys,
		records.NewStore(db),
		documents.NewVault(filepath.Join(dir, "uploads"), 1<<20),
		groups,
		[]string{"sysop", "bureaucrat", "interface-admin", "userverification-admin"},
		audit.NewTrail(filepath.Join(dir, "audit.jsonl")),
	)
	return &fixture{svc: svc, keys: keys, groups: groups}
}

func (f *fixture) provisionAndUnlock(t *testing.T, password string) protectedkey.UserKey {
	t.Helper()
	if _, _, err := f.keys.Provision(password); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	key, err := f.svc.Unlock("admin", password)
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	return key
}

func sampleSubmission() (records.FieldSet, map[string]io.Reader) {
	fields := records.FieldSet{
		{Name: "full_name", Kind: records.KindText, Value: "Ada Lovelace"},
		{Name: "proof_of_identity", Kind: records.KindFile, Value: "passport.jpg"},
	}
	files := map[string]io.Reader{
		"proof_of_identity": strings.NewReader("scanned passport bytes"),
	}
	return fields, files
}

func TestSubmitAndView_FullFlow(t *testing.T) {
	f := newFixture(t)
	userKey := f.provisionAndUnlock(t, "Tr0ub4dor&3")

	fields, files := sampleSubmission()
	if err := f.svc.Submit(42, fields, files); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	status, err := f.svc.Status(42)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != records.StatusPending {
		t.Errorf("Expected pending after submission, got %q", status)
	}

	view, err := f.svc.View("admin", 42, userKey)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.Status != records.StatusPending {
		t.Errorf("Expected pending, got %q", view.Status)
	}
	name, ok := view.Fields.Get("full_name")
	if !ok || name.Value != "Ada Lovelace" {
		t.Errorf("Decrypted fields mismatch: %+v", view.Fields)
	}
	proof, ok := view.Fields.Get("proof_of_identity")
	if !ok || proof.Kind != records.KindFile || proof.Value != "passport.jpg" {
		t.Errorf("File field should carry the stored filename: %+v", proof)
	}

	contents, err := f.svc.OpenDocument("admin", 42, "passport.jpg", userKey)
	if err != nil {
		t.Fatalf("OpenDocument failed: %v", err)
	}
	if !bytes.Equal(contents, []byte("scanned passport bytes")) {
		t.Errorf("Decrypted document mismatch")
	}
}

func TestSubmit_WithoutKeys(t *testing.T) {
	f := newFixture(t)
	fields, files := sampleSubmission()
	if err := f.svc.Submit(42, fields, files); !errors.Is(err, uverrors.ErrKeysNotSet) {
		t.Errorf("Expected ErrKeysNotSet, got: %v", err)
	}
}

func TestUnlock_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.provisionAndUnlock(t, "Tr0ub4dor&3")

	if _, err := f.svc.Unlock("admin", "wrong-pass"); !errors.Is(err, uverrors.ErrWrongKeyOrCorrupted) {
		t.Errorf("Expected ErrWrongKeyOrCorrupted, got: %v", err)
	}
}

func TestDecryptData_Paths(t *testing.T) {
	f := newFixture(t)
	userKey := f.provisionAndUnlock(t, "Tr0ub4dor&3")

	// Absent data short-circuits before any key checks are meaningful.
	plain, err := f.svc.DecryptData(nil, nil)
	if err != nil || plain != nil {
		t.Errorf("Empty payload: expected (nil, nil), got (%v, %v)", plain, err)
	}

	fields, files := sampleSubmission()
	if err := f.svc.Submit(42, fields, files); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Missing user key: present data cannot be decrypted.
	if _, err := f.svc.View("admin", 42, nil); !errors.Is(err, uverrors.ErrUserKeyNotSet) {
		t.Errorf("Expected ErrUserKeyNotSet, got: %v", err)
	}

	// Wrong user key: the stored secret key fails authentication.
	blob, err := protectedkey.New("0therPassw0rd")
	if err != nil {
		t.Fatalf("Failed to create other key: %v", err)
	}
	otherKey, err := protectedkey.Unlock(blob, "0therPassw0rd")
	if err != nil {
		t.Fatalf("Failed to unlock other key: %v", err)
	}
	if _, err := f.svc.View("admin", 42, otherKey); !errors.Is(err, uverrors.ErrWrongKeyOrCorrupted) {
		t.Errorf("Expected ErrWrongKeyOrCorrupted, got: %v", err)
	}

	// Correct key still works after the failures.
	if _, err := f.svc.View("admin", 42, userKey); err != nil {
		t.Errorf("View with correct key failed: %v", err)
	}
}

func TestReviewAndGate(t *testing.T) {
	f := newFixture(t)
	userKey := f.provisionAndUnlock(t, "Tr0ub4dor&3")

	fields, files := sampleSubmission()
	if err := f.svc.Submit(42, fields, files); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	verified, err := f.svc.IsVerified(42)
	if err != nil || verified {
		t.Errorf("Pending user must not gate as verified")
	}

	if err := f.svc.Review("admin", 42, records.StatusVerified, "checked"); err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	verified, err = f.svc.IsVerified(42)
	if err != nil || !verified {
		t.Errorf("Verified user must gate as verified")
	}

	// The decrypt gate is the unlocked key, independent of record status:
	// a verified record still decrypts, and a pending record already did.
	if _, err := f.svc.View("admin", 42, userKey); err != nil {
		t.Errorf("View of verified record failed: %v", err)
	}

	if err := f.svc.Review("admin", 42, records.StatusNone, ""); !errors.Is(err, uverrors.ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus for StatusNone, got: %v", err)
	}
}

func TestIsVerified_NotRequired(t *testing.T) {
	f := newFixture(t)
	f.provisionAndUnlock(t, "Tr0ub4dor&3")

	fields, files := sampleSubmission()
	if err := f.svc.Submit(42, fields, files); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := f.svc.Review("admin", 42, records.StatusNotRequired, ""); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	verified, err := f.svc.IsVerified(42)
	if err != nil || !verified {
		t.Errorf("not_required must gate as verified")
	}
}

func TestAuthorized_MemoizesPerRequestCache(t *testing.T) {
	f := newFixture(t)

	cache := verification.AuthCache{}
	for i := 0; i < 3; i++ {
		ok, err := f.svc.Authorized(cache, "reviewer")
		if err != nil {
			t.Fatalf("Authorized failed: %v", err)
		}
		if !ok {
			t.Errorf("reviewer should be authorized")
		}
	}
	if f.groups.calls != 1 {
		t.Errorf("Expected one group lookup with a warm cache, got %d", f.groups.calls)
	}

	ok, err := f.svc.Authorized(cache, "alice")
	if err != nil {
		t.Fatalf("Authorized failed: %v", err)
	}
	if ok {
		t.Errorf("alice should not be authorized")
	}

	// A fresh cache (a new request) consults the provider again.
	ok, err = f.svc.Authorized(verification.AuthCache{}, "reviewer")
	if err != nil || !ok {
		t.Fatalf("Authorized with fresh cache failed: ok=%t err=%v", ok, err)
	}
	if f.groups.calls != 3 {
		t.Errorf("Expected three provider calls total, got %d", f.groups.calls)
	}
}
