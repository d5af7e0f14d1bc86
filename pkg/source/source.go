// Package source provides the block sources a disc is read through: a VIDEO_TS folder on the local
// filesystem or an ISO9660 image. Both give access to the IFO files and present the title VOB parts of a
// title set as one contiguous run of sectors.
package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/dvderr"
	"github.com/bgrewell/dvd-kit/pkg/logging"
)

// Source reads IFO data and title VOB sectors of one disc.
type Source interface {
	// ReadIFO returns the information file of title set vts, 0 for the video manager.
	ReadIFO(vts int) ([]byte, error)
	// ReadBackup returns the .BUP copy of the same file.
	ReadBackup(vts int) ([]byte, error)
	// SeekSector positions reads on sector of the title VOBs of titleSet.
	SeekSector(titleSet int, sector uint32) error
	// ReadBlocks reads from the current position and advances it.
	ReadBlocks(p []byte) (int, error)
	// TitleSectors returns the number of title VOB sectors of titleSet.
	TitleSectors(titleSet int) (int64, error)
	Close() error
}

// store is the file access the disc reader needs from a folder or an image. Files handed out by open stay
// open until close; readFile returns a whole file without keeping it open.
type store interface {
	open(name string) (io.ReaderAt, int64, error)
	readFile(name string) ([]byte, error)
	close() error
}

// part is one VTS_nn_k.VOB file.
type part struct {
	name string
	r    io.ReaderAt
	size int64
}

// vobSet is the concatenation of the title VOB parts of a title set.
type vobSet struct {
	parts []part
	size  int64
}

// readAt reads across part boundaries.
func (v *vobSet) readAt(p []byte, off int64) (int, error) {
	n := 0
	for _, pt := range v.parts {
		if len(p) == 0 {
			break
		}
		if off >= pt.size {
			off -= pt.size
			continue
		}
		want := p
		if rest := pt.size - off; int64(len(want)) > rest {
			want = want[:rest]
		}
		m, err := pt.r.ReadAt(want, off)
		n += m
		if err != nil && !(errors.Is(err, io.EOF) && m == len(want)) {
			return n, fmt.Errorf("reading %s: %w", pt.name, err)
		}
		p = p[m:]
		off = 0
	}
	if len(p) > 0 {
		return n, io.EOF
	}
	return n, nil
}

// disc implements Source on top of a store.
type disc struct {
	store store
	log   *logging.Logger

	sets     map[int]*vobSet
	current  *vobSet
	position int64
}

func newDisc(s store, log *logging.Logger) *disc {
	return &disc{store: s, log: log, sets: map[int]*vobSet{}}
}

func ifoName(vts int, backup bool) string {
	switch {
	case vts == 0 && backup:
		return consts.VMG_BUP_NAME
	case vts == 0:
		return consts.VMG_IFO_NAME
	case backup:
		return fmt.Sprintf(consts.VTS_BUP_PATTERN, vts)
	default:
		return fmt.Sprintf(consts.VTS_IFO_PATTERN, vts)
	}
}

func (d *disc) ReadIFO(vts int) ([]byte, error) {
	return d.readFile(vts, false)
}

func (d *disc) ReadBackup(vts int) ([]byte, error) {
	return d.readFile(vts, true)
}

func (d *disc) readFile(vts int, backup bool) ([]byte, error) {
	if vts < 0 || vts > consts.MAX_TITLE_SETS {
		return nil, dvderr.Newf("source.ReadIFO", dvderr.ErrOutOfRange, "title set %d", vts)
	}
	name := ifoName(vts, backup)
	data, err := d.store.readFile(name)
	if err != nil {
		return nil, err
	}
	d.log.Debug("read information file", "name", name, "bytes", len(data))
	return data, nil
}

// titleSet returns the VOB parts of vts, probing VTS_nn_1..9.VOB until the first missing part.
func (d *disc) titleSet(vts int) (*vobSet, error) {
	if set, ok := d.sets[vts]; ok {
		return set, nil
	}
	set := &vobSet{}
	for k := 1; k <= consts.MAX_VOB_PARTS; k++ {
		name := fmt.Sprintf(consts.VTS_VOB_PATTERN, vts, k)
		r, size, err := d.store.open(name)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, err
		}
		set.parts = append(set.parts, part{name: name, r: r, size: size})
		set.size += size
	}
	if len(set.parts) == 0 {
		return nil, fmt.Errorf("title set %d has no title VOBs: %w", vts, fs.ErrNotExist)
	}
	d.log.Debug("opened title VOBs", "vts", vts, "parts", len(set.parts), "bytes", set.size)
	d.sets[vts] = set
	return set, nil
}

func (d *disc) TitleSectors(titleSet int) (int64, error) {
	set, err := d.titleSet(titleSet)
	if err != nil {
		return 0, err
	}
	return set.size / consts.DVD_SECTOR_SIZE, nil
}

func (d *disc) SeekSector(titleSet int, sector uint32) error {
	set, err := d.titleSet(titleSet)
	if err != nil {
		return err
	}
	offset := int64(sector) * consts.DVD_SECTOR_SIZE
	if offset > set.size {
		return dvderr.Newf("source.SeekSector", dvderr.ErrOutOfRange, "sector %d of title set %d with %d sectors",
			sector, titleSet, set.size/consts.DVD_SECTOR_SIZE)
	}
	d.current, d.position = set, offset
	return nil
}

func (d *disc) ReadBlocks(p []byte) (int, error) {
	if d.current == nil {
		return 0, dvderr.New("source.ReadBlocks", dvderr.ErrNotPositioned)
	}
	n, err := d.current.readAt(p, d.position)
	d.position += int64(n)
	return n, err
}

func (d *disc) Close() error {
	d.sets = map[int]*vobSet{}
	d.current = nil
	return d.store.close()
}
