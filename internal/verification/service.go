package verification

import (
	"fmt"
	"io"

	"github.com/wikisphere/userverify/internal/audit"
	"github.com/wikisphere/userverify/internal/documents"
	"github.com/wikisphere/userverify/internal/envelope"
	uverrors "github.com/wikisphere/userverify/internal/errors"
	"github.com/wikisphere/userverify/internal/keystore"
	"github.com/wikisphere/userverify/internal/protectedkey"
	"github.com/wikisphere/userverify/internal/records"
)

// GroupProvider is the host platform's group-membership accessor.
type GroupProvider interface {
	UserGroups(username string) ([]string, error)
}

// AuthCache memoizes authorization lookups for the duration of one request.
// Create one per request and pass it explicitly; it must never outlive the
// request or be shared across requests.
type AuthCache map[string]bool

// RecordView is a decrypted verification record.
type RecordView struct {
	Fields   records.FieldSet
	Status   records.Status
	Comments string
}

// Service composes the key store, record store, document vault and envelope
// crypto into the verification workflows.
type Service struct {
	keys             *keystore.Store
	records          *records.Store
	vault            *documents.Vault
	groups           GroupProvider
	authorizedGroups []string
	trail            *audit.Trail
}

func NewService(keys *keystore.Store, recs *records.Store, vault *documents.Vault, groups GroupProvider, authorizedGroups []string, trail *audit.Trail) *Service {
	return &Service{
		keys:             keys,
		records:          recs,
		vault:            vault,
		groups:           groups,
		authorizedGroups: authorizedGroups,
		trail:            trail,
	}
}

// Unlock recovers the session user key from the stored protected-key blob
// and the administrator's password. Wrong password and corrupted blob are
// indistinguishable to the caller. Every attempt is audited.
func (s *Service) Unlock(actor, password string) (protectedkey.UserKey, error) {
	record, err := s.keys.ActiveKey()
	if err != nil {
		return nil, err
	}

	key, err := protectedkey.Unlock(record.ProtectedKey, password)
	if err != nil {
		s.trail.Log(audit.Entry{Actor: actor, Operation: "unlock", Outcome: "failed"})
		return nil, err
	}
	s.trail.Log(audit.Entry{Actor: actor, Operation: "unlock", Outcome: "ok"})
	return key, nil
}

// Submit stores a user's verification submission. Uploaded files are sealed
// and written first, then the field set is sealed and upserted with status
// pending. A crash between the two leaves orphaned files for an out-of-band
// cleanup; the row is never written before its files.
func (s *Service) Submit(userID int64, fields records.FieldSet, files map[string]io.Reader) error {
	key, err := s.keys.ActiveKey()
	if err != nil {
		return err
	}

	for i, field := range fields {
		if field.Kind != records.KindFile {
			continue
		}
		upload, ok := files[field.Name]
		if !ok {
			continue
		}
		stored, err := s.vault.Save(userID, field.Value, upload, key.PublicKey)
		if err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}
		fields[i].Value = stored
	}

	sealed, err := records.EncodeSealed(fields, key.PublicKey)
	if err != nil {
		return err
	}
	if err := s.records.SubmitData(userID, sealed); err != nil {
		return err
	}

	s.trail.Log(audit.Entry{Operation: "submit", TargetUser: userID, Outcome: "ok"})
	return nil
}

// Status returns the user's verification status, StatusNone when no record
// exists.
func (s *Service) Status(userID int64) (records.Status, error) {
	return s.records.Status(userID)
}

// IsVerified reports whether the user passes the verification gate.
func (s *Service) IsVerified(userID int64) (bool, error) {
	status, err := s.records.Status(userID)
	if err != nil {
		return false, err
	}
	return status.Verified(), nil
}

// Review records an administrator's decision. The sealed data is untouched;
// only status and comments change. StatusNone is rejected.
func (s *Service) Review(actor string, userID int64, status records.Status, comments string) error {
	if err := s.records.SetReview(userID, status, comments); err != nil {
		return err
	}
	s.trail.Log(audit.Entry{Actor: actor, Operation: "review", TargetUser: userID, Status: string(status), Outcome: "ok"})
	return nil
}

// DecryptData runs the full decrypt path for an at-rest payload:
//
//	active key -> session user key -> decrypt stored secret key -> open seal
//
// Empty input returns (nil, nil) without touching the cipher. A missing key
// record is a configuration error; a missing user key means the session
// cannot decrypt; everything else collapses into ErrWrongKeyOrCorrupted.
func (s *Service) DecryptData(data []byte, userKey protectedkey.UserKey) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	record, err := s.keys.ActiveKey()
	if err != nil {
		return nil, err
	}
	if len(userKey) == 0 {
		return nil, uverrors.ErrUserKeyNotSet
	}

	secretKey, err := envelope.DecryptSymmetric(record.EncryptedPrivateKey, userKey)
	if err != nil {
		return nil, err
	}

	return envelope.Open(data, record.PublicKey, secretKey)
}

// View returns the decrypted record for userID. The caller must already have
// passed the reviewer gate; the protocol gate is "only a reviewer who has
// unlocked the user key may decrypt", independent of the record's status.
func (s *Service) View(actor string, userID int64, userKey protectedkey.UserKey) (*RecordView, error) {
	record, err := s.records.Get(userID)
	if err != nil {
		return nil, err
	}

	plain, err := s.DecryptData(record.Data, userKey)
	if err != nil {
		return nil, err
	}

	var fields records.FieldSet
	if plain != nil {
		if err := fields.UnmarshalJSON(plain); err != nil {
			return nil, fmt.Errorf("failed to parse decrypted field set: %w", err)
		}
	}

	s.trail.Log(audit.Entry{Actor: actor, Operation: "view", TargetUser: userID, Outcome: "ok"})
	return &RecordView{
		Fields:   fields,
		Status:   records.Status(record.Status),
		Comments: record.Comments,
	}, nil
}

// OpenDocument returns the decrypted contents of one of the user's uploaded
// documents, following the same decrypt path as record data.
func (s *Service) OpenDocument(actor string, userID int64, filename string, userKey protectedkey.UserKey) ([]byte, error) {
	record, err := s.keys.ActiveKey()
	if err != nil {
		return nil, err
	}
	if len(userKey) == 0 {
		return nil, uverrors.ErrUserKeyNotSet
	}

	secretKey, err := envelope.DecryptSymmetric(record.EncryptedPrivateKey, userKey)
	if err != nil {
		return nil, err
	}

	plain, err := s.vault.Open(userID, filename, record.PublicKey, secretKey)
	if err != nil {
		return nil, err
	}

	s.trail.Log(audit.Entry{Actor: actor, Operation: "view-document", TargetUser: userID, Document: filename, Outcome: "ok"})
	return plain, nil
}

// Authorized reports whether the named actor belongs to a reviewer group.
// Lookups are memoized in the caller's request-scoped cache so repeated
// checks within one request hit the group provider once.
func (s *Service) Authorized(cache AuthCache, username string) (bool, error) {
	if cache != nil {
		if ok, hit := cache[username]; hit {
			return ok, nil
		}
	}

	groups, err := s.groups.UserGroups(username)
	if err != nil {
		return false, fmt.Errorf("failed to resolve groups for %s: %w", username, err)
	}

	authorized := false
	for _, g := range groups {
		for _, want := range s.authorizedGroups {
			if g == want {
				authorized = true
			}
		}
	}

	if cache != nil {
		cache[username] = authorized
	}
	return authorized, nil
}
