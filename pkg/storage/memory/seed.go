package memory

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rhuss/vexgate/pkg/credential"
	"github.com/rhuss/vexgate/pkg/storage"
)

// seedFile is the YAML layout accepted by Seed.
//
//	credentials:          # lookup key as stored -> account id
//	  9f86d08...: acct-1
//	tokens:               # raw bearer token -> account id, digested on load
//	  dev-token: acct-1
//	projects:
//	  0f8fad5b-d9cb-469f-a165-70867728950e:
//	    owner: acct-1
//	    value: '{"flag":true}'
type seedFile struct {
	Credentials map[string]string      `yaml:"credentials"`
	Tokens      map[string]string      `yaml:"tokens"`
	Projects    map[string]seedProject `yaml:"projects"`
}

type seedProject struct {
	Value *string `yaml:"value"`
	Owner *string `yaml:"owner"`
}

// Seed loads credentials and projects from YAML. Entries under "tokens"
// are converted to lookup keys with d, so the same seed works for either
// digest variant.
func (s *Store) Seed(r io.Reader, d credential.Digester) error {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return fmt.Errorf("decoding seed: %w", err)
	}

	for key, accountID := range f.Credentials {
		s.PutCredential(key, accountID)
	}
	if len(f.Tokens) > 0 && d == nil {
		return fmt.Errorf("seed contains raw tokens but no digest was given")
	}
	for token, accountID := range f.Tokens {
		s.PutCredential(d.Digest(token), accountID)
	}
	for id, p := range f.Projects {
		s.PutProject(id, storage.Record{Value: p.Value, Owner: p.Owner})
	}
	return nil
}

// SeedFile loads a seed from the file at path.
func (s *Store) SeedFile(path string, d credential.Digester) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	if err := s.Seed(f, d); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
