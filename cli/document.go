package cli

import (
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s"
	"github.com/thanhnguyen2187/d2-savior/d2s/dheader"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/dstash"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
	"github.com/thanhnguyen2187/d2-savior/ds"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	Kind string

	// Document is the JSON form of any file the tool reads. Exactly one of Save, Stash and Item
	// is set, according to Kind.
	Document struct {
		Kind Kind `json:"kind"`
		// Version is the file version an item record was read with.
		Version uint32        `json:"version,omitempty"`
		Save    *d2s.Save     `json:"save,omitempty"`
		Stash   *dstash.Stash `json:"stash,omitempty"`
		Item    *ditem.Item   `json:"item,omitempty"`
	}
)

const (
	KindSave  Kind = "save"
	KindStash Kind = "stash"
	KindItem  Kind = "item"

	// MinSaveVersion tells a character file apart from a stash sector, which has a small kind
	// number where a character file keeps its version.
	MinSaveVersion = 0x47
)

func DetectKind(path string, bs []byte) Kind {
	reader := lbits.NewReader(bs)
	magic, err1 := reader.ReadUInt32()
	version, err2 := reader.ReadUInt32()
	if err1 == nil && err2 == nil && magic == dheader.Magic && version >= MinSaveVersion {
		return KindSave
	}
	if _, err := dstash.Sniff(bs); err == nil {
		return KindStash
	}
	if strings.EqualFold(filepath.Ext(path), ".d2s") {
		return KindSave
	}
	return KindItem
}

// DecodeDocument reads a binary file. version is only used for item records, which do not carry
// their own.
func DecodeDocument(path string, bs []byte, cache *dschema.Cache, config d2s.Config, version uint32) (*Document, error) {
	kind := DetectKind(path, bs)
	doc := Document{Kind: kind}
	switch kind {
	case KindSave:
		save, err := d2s.Decode(bs, cache, config)
		if err != nil {
			err := errors.Wrapf(err, `DecodeDocument error reading save "%s"`, path)
			return nil, err
		}
		doc.Save = save
	case KindStash:
		stash, err := dstash.Decode(bs, cache, config)
		if err != nil {
			err := errors.Wrapf(err, `DecodeDocument error reading stash "%s"`, path)
			return nil, err
		}
		doc.Stash = stash
	case KindItem:
		item, err := d2s.DecodeItem(bs, version, cache, config)
		if err != nil {
			err := errors.Wrapf(err, `DecodeDocument error reading item "%s"`, path)
			return nil, err
		}
		doc.Version = version
		doc.Item = item
	default:
		return nil, ds.ErrUnreachableCode{Caller: "DecodeDocument", Value: kind}
	}
	return &doc, nil
}

func EncodeDocument(doc Document, cache *dschema.Cache, config d2s.Config) ([]byte, error) {
	switch {
	case doc.Kind == KindSave && doc.Save != nil:
		return d2s.Encode(*doc.Save, cache, config)
	case doc.Kind == KindStash && doc.Stash != nil:
		return dstash.Encode(*doc.Stash, cache, config)
	case doc.Kind == KindItem && doc.Item != nil:
		return d2s.EncodeItem(*doc.Item, doc.Version, cache, config)
	}
	err := errors.Errorf(`EncodeDocument error: no content for kind "%s"`, doc.Kind)
	return nil, err
}

func ParseDocument(bs []byte) (*Document, error) {
	doc := Document{}
	if err := json.Unmarshal(bs, &doc); err != nil {
		err := errors.Wrap(err, "ParseDocument error")
		return nil, err
	}
	return &doc, nil
}

func IsJSON(bs []byte) bool {
	return json.Valid(bs)
}
