//go:build cgo && gozstd

package compress

import (
	"github.com/valyala/gozstd"
)

const zstdEngineVersion = "libzstd-1.5"

// cgoZstd calls libzstd through gozstd. The one-shot gozstd API exposes the
// level and dictionaries only; window log and strategy are accepted but not
// forwarded to the codec.
type cgoZstd struct {
	level int
	cdict *gozstd.CDict
	ddict *gozstd.DDict
}

func newZstdEngine(p zstdParams) (zstdEngine, error) {
	e := &cgoZstd{}
	if err := e.configure(p); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *cgoZstd) configure(p zstdParams) error {
	var (
		cdict *gozstd.CDict
		ddict *gozstd.DDict
		err   error
	)
	if len(p.dict) > 0 {
		if cdict, err = gozstd.NewCDictLevel(p.dict, p.level); err != nil {
			return err
		}
		if ddict, err = gozstd.NewDDict(p.dict); err != nil {
			cdict.Release()
			return err
		}
	}

	_ = e.close()
	e.level, e.cdict, e.ddict = p.level, cdict, ddict

	return nil
}

func (e *cgoZstd) compress(dst, src []byte) ([]byte, error) {
	if e.cdict != nil {
		return gozstd.CompressDict(dst, src, e.cdict), nil
	}

	return gozstd.CompressLevel(dst, src, e.level), nil
}

func (e *cgoZstd) decompress(dst, src []byte) ([]byte, error) {
	if e.ddict != nil {
		return gozstd.DecompressDict(dst, src, e.ddict)
	}

	return gozstd.Decompress(dst, src)
}

func (e *cgoZstd) version() string { return zstdEngineVersion }

func (e *cgoZstd) close() error {
	if e.cdict != nil {
		e.cdict.Release()
		e.cdict = nil
	}
	if e.ddict != nil {
		e.ddict.Release()
		e.ddict = nil
	}

	return nil
}
