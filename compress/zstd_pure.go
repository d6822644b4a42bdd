//go:build !(cgo && gozstd)

package compress

import (
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"

	"github.com/arloliu/goethe/internal/hash"
)

const zstdEngineVersion = "klauspost-1.18"

// pureZstd owns a klauspost encoder/decoder pair. The encoder cannot be
// reconfigured in place, so configure builds a fresh pair and releases the old one.
type pureZstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdEngine(p zstdParams) (zstdEngine, error) {
	e := &pureZstd{}
	if err := e.configure(p); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *pureZstd) configure(p zstdParams) error {
	encOpts := []zstd.EOption{
		zstd.WithEncoderLevel(pureEncoderLevel(p.level, p.strategy)),
		zstd.WithEncoderConcurrency(1),
	}
	if p.windowLog > 0 {
		encOpts = append(encOpts, zstd.WithWindowSize(1<<p.windowLog))
	}
	decOpts := []zstd.DOption{
		zstd.WithDecoderConcurrency(1),
	}
	if len(p.dict) > 0 {
		id := hash.DictionaryID(p.dict)
		encOpts = append(encOpts, zstd.WithEncoderDictRaw(id, p.dict))
		decOpts = append(decOpts, zstd.WithDecoderDictRaw(id, p.dict))
	}

	enc, err := zstd.NewWriter(nil, encOpts...)
	if err != nil {
		return err
	}
	dec, err := zstd.NewReader(nil, decOpts...)
	if err != nil {
		return multierr.Append(err, enc.Close())
	}

	old := e.close()
	e.enc, e.dec = enc, dec

	return old
}

// pureEncoderLevel maps a zstd level, or a non-zero strategy, onto the four
// klauspost speed classes.
func pureEncoderLevel(level, strategy int) zstd.EncoderLevel {
	switch {
	case strategy == 0:
		return zstd.EncoderLevelFromZstd(level)
	case strategy == 1:
		return zstd.SpeedFastest
	case strategy == 2:
		return zstd.SpeedDefault
	case strategy <= 5:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

func (e *pureZstd) compress(dst, src []byte) ([]byte, error) {
	return e.enc.EncodeAll(src, dst), nil
}

func (e *pureZstd) decompress(dst, src []byte) ([]byte, error) {
	return e.dec.DecodeAll(src, dst)
}

func (e *pureZstd) version() string { return zstdEngineVersion }

func (e *pureZstd) close() error {
	var err error
	if e.enc != nil {
		err = multierr.Append(err, e.enc.Close())
		e.enc = nil
	}
	if e.dec != nil {
		e.dec.Close()
		e.dec = nil
	}

	return err
}
