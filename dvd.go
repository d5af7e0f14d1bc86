// Package dvd opens DVD-Video discs, either VIDEO_TS folders or ISO9660 images, and ties the IFO decoder,
// the title catalog, the program chain indexes and the navigation cursor together.
package dvd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bgrewell/dvd-kit/pkg/catalog"
	"github.com/bgrewell/dvd-kit/pkg/chain"
	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/ifo"
	"github.com/bgrewell/dvd-kit/pkg/logging"
	"github.com/bgrewell/dvd-kit/pkg/nav"
	"github.com/bgrewell/dvd-kit/pkg/option"
	"github.com/bgrewell/dvd-kit/pkg/source"
)

// Open opens the disc at location: a VIDEO_TS directory, a directory holding one, or an ISO image.
func Open(location string, opts ...option.OpenOption) (*Disc, error) {
	o := option.DefaultOpenOptions()
	for _, opt := range opts {
		opt(o)
	}

	st, err := os.Stat(location)
	if err != nil {
		return nil, err
	}
	var src source.Source
	if st.IsDir() {
		src, err = source.OpenFolder(location, option.Logger(o.Logger))
	} else {
		src, err = source.OpenImage(location, option.Logger(o.Logger))
	}
	if err != nil {
		return nil, err
	}

	d, err := newDisc(src, o)
	if err != nil {
		src.Close()
		return nil, err
	}
	return d, nil
}

// New reads the video manager through an already opened source.
func New(src source.Source, opts ...option.OpenOption) (*Disc, error) {
	o := option.DefaultOpenOptions()
	for _, opt := range opts {
		opt(o)
	}
	return newDisc(src, o)
}

// Disc is an opened disc. Title sets are decoded on first use and kept for the lifetime of the Disc.
// A Disc is not safe for concurrent use.
type Disc struct {
	src     source.Source
	options *option.OpenOptions
	log     *logging.Logger

	vmg     *ifo.VMG
	catalog *catalog.Catalog
	vts     map[int]*ifo.VTS
	indexes map[uint32]*chain.Index
}

func newDisc(src source.Source, o *option.OpenOptions) (*Disc, error) {
	d := &Disc{
		src:     src,
		options: o,
		log:     o.Logger.Named("dvd"),
		vts:     map[int]*ifo.VTS{},
		indexes: map[uint32]*chain.Index{},
	}

	var vmg *ifo.VMG
	err := d.decodeIFO(0, func(data []byte) (err error) {
		vmg, err = ifo.DecodeVMG(data, d.componentOptions()...)
		return err
	})
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(vmg)
	if err != nil {
		return nil, err
	}
	d.vmg, d.catalog = vmg, cat
	d.log.Info("opened disc", "provider", vmg.ProviderID, "titles", cat.TitleCount(), "title_sets", vmg.TitleSetCount)
	return d, nil
}

func (d *Disc) componentOptions() []option.Option {
	return []option.Option{option.Logger(d.options.Logger), option.StrictCategories(d.options.StrictCategories)}
}

// decodeIFO reads the information file of vts and hands it to decode, trying the backup copy when the
// first choice cannot be read or decoded.
func (d *Disc) decodeIFO(vts int, decode func([]byte) error) error {
	readers := []func(int) ([]byte, error){d.src.ReadIFO, d.src.ReadBackup}
	if d.options.PreferBackup {
		readers[0], readers[1] = readers[1], readers[0]
	}

	var first error
	for i, read := range readers {
		data, err := read(vts)
		if err == nil {
			err = decode(data)
		}
		if err == nil {
			return nil
		}
		if first == nil {
			first = err
		}
		if i == 0 {
			d.log.Warn("information file unusable, trying the other copy", "vts", vts, "error", err.Error())
		}
	}
	return first
}

// VMG returns the decoded video manager.
func (d *Disc) VMG() *ifo.VMG {
	return d.vmg
}

// Catalog returns the title catalog.
func (d *Disc) Catalog() *catalog.Catalog {
	return d.catalog
}

// VTS returns the decoded title set n.
func (d *Disc) VTS(n int) (*ifo.VTS, error) {
	if vts, ok := d.vts[n]; ok {
		return vts, nil
	}
	if n < 1 || n > consts.MAX_TITLE_SETS {
		return nil, dvderr.Newf("dvd.VTS", dvderr.ErrOutOfRange, "title set %d", n)
	}
	var vts *ifo.VTS
	err := d.decodeIFO(n, func(data []byte) (err error) {
		vts, err = ifo.DecodeVTS(data, d.componentOptions()...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("title set %d: %w", n, err)
	}
	d.vts[n] = vts
	return vts, nil
}

// LoadIndex returns the program chain index of title, building it on first use.
func (d *Disc) LoadIndex(title catalog.Title) (*chain.Index, error) {
	if idx, ok := d.indexes[title.ID]; ok {
		return idx, nil
	}
	vts, err := d.VTS(title.VTS)
	if err != nil {
		return nil, err
	}
	idx, err := chain.Build(vts, title, d.componentOptions()...)
	if err != nil {
		return nil, fmt.Errorf("title %d: %w", title.ID, err)
	}
	d.indexes[title.ID] = idx
	return idx, nil
}

// NewCursor returns an idle navigation cursor reading through the disc's source.
func (d *Disc) NewCursor() *nav.Cursor {
	return nav.New(d.catalog, d, d.src, d.componentOptions()...)
}

// Source returns the block source the disc reads through.
func (d *Disc) Source() source.Source {
	return d.src
}

// SeekTime positions cur at offset into its open title using the title set's time map.
func (d *Disc) SeekTime(cur *nav.Cursor, offset time.Duration) error {
	const op = "dvd.SeekTime"
	state := cur.State()
	if !state.Positioned {
		return dvderr.New(op, dvderr.ErrNotPositioned)
	}
	idx := cur.Index()
	vts, err := d.VTS(idx.Title().VTS)
	if err != nil {
		return err
	}
	sector, ok := vts.SectorAtTime(idx.PGCNumber(), offset)
	if !ok {
		return dvderr.Newf(op, dvderr.ErrOutOfRange, "title %d has no time map", state.Title)
	}
	return cur.Seek(int64(sector) * consts.DVD_SECTOR_SIZE)
}

// Close releases the source.
func (d *Disc) Close() error {
	if d.src == nil {
		return errors.New("disc already closed")
	}
	err := d.src.Close()
	d.src = nil
	return err
}
