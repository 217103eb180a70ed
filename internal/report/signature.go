package report

import "github.com/chort/cuckoo/internal/config"

// SignatureMeta describes a signature: identity, ranking, engine version
// bounds, and the payload snapshotted into a Match. Signatures may fill
// Data while matching, so the snapshot is taken after Match returns.
type SignatureMeta struct {
	Name        string
	Description string
	Severity    int
	References  []string
	Data        interface{}
	Alert       bool
	// Enabled gates evaluation; configuration can still disable an
	// author-enabled signature.
	Enabled bool
	// Minimum and Maximum are optional dotted engine versions bounding
	// compatibility. Empty means unbounded.
	Minimum string
	Maximum string
}

// Signature evaluates the merged results document for one behavioral
// pattern. A fresh instance is built for every run.
type Signature interface {
	// Configure binds the signature's configuration before Match.
	Configure(cfg config.Module)
	// Meta exposes the signature's mutable metadata. The runner reads the
	// gates before Match and snapshots the rest afterwards.
	Meta() *SignatureMeta
	// Match inspects a read-only snapshot of the document and reports
	// whether the pattern is present.
	Match(doc Document) (bool, error)
}

// SignatureDescriptor identifies a registered signature.
type SignatureDescriptor struct {
	Name string
	New  func() Signature
}

// BaseSignature holds the metadata and configuration common to
// signatures. Concrete signatures embed it and implement Match.
type BaseSignature struct {
	SignatureMeta
	Cfg config.Module
}

// Configure implements Signature.
func (b *BaseSignature) Configure(cfg config.Module) {
	b.Cfg = cfg
}

// Meta implements Signature.
func (b *BaseSignature) Meta() *SignatureMeta {
	return &b.SignatureMeta
}

// snapshot freezes the metadata into an immutable match record.
func (m *SignatureMeta) snapshot() Match {
	refs := make([]string, len(m.References))
	copy(refs, m.References)

	return Match{
		Name:        m.Name,
		Description: m.Description,
		Severity:    m.Severity,
		References:  refs,
		Data:        m.Data,
		Alert:       m.Alert,
	}
}
