package compositor

import (
	"io"
	"os"

	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Selection is the clipboard. It is either owned by a client's data
// source or, after OverrideSelection or once a client's selection has
// been retained, by the compositor.
type Selection struct {
	c       *Compositor
	global  *wl.Global
	devices []*wl.DataDevice
	source  *wl.DataSource
	data    map[string][]byte
	watcher func(data map[string][]byte)
}

func newSelection(c *Compositor) *Selection {
	sel := Selection{c: c}
	sel.global = c.server.AddGlobal(protocol.DataDeviceManagerInterface, protocol.DataDeviceManagerVersion, sel.bind)
	return &sel
}

func (sel *Selection) bind(client *wl.Client, version, id uint32) error {
	r, err := wl.BindDataDeviceManager(client, version, id)
	if err != nil {
		return err
	}
	r.Listener = (*dataDeviceManagerListener)(sel)
	return nil
}

// Source returns the data source of the client that owns the
// selection, if any.
func (sel *Selection) Source() *wl.DataSource {
	return sel.source
}

// Data returns the content of the selection if the compositor has a
// copy of it.
func (sel *Selection) Data() map[string][]byte {
	return maps.Clone(sel.data)
}

// MimeTypes lists the formats that the selection is available in.
func (sel *Selection) MimeTypes() []string {
	if sel.source != nil {
		return sel.source.MimeTypes()
	}

	mimes := make([]string, 0, len(sel.data))
	for mime := range sel.data {
		mimes = append(mimes, mime)
	}
	slices.Sort(mimes)
	return mimes
}

// Override makes the compositor the owner of the selection. The
// previous owner is told that its source was cancelled.
func (sel *Selection) Override(data map[string][]byte) {
	sel.setSource(nil)
	sel.data = maps.Clone(data)
	sel.announce()
}

func (sel *Selection) setSource(source *wl.DataSource) {
	if (sel.source != nil) && (sel.source != source) {
		sel.source.Cancelled()
	}
	sel.source = source
	sel.data = nil
}

func (sel *Selection) announce() {
	for _, d := range sel.devices {
		sel.offer(d)
	}
}

func (sel *Selection) offer(d *wl.DataDevice) {
	if (sel.source == nil) && (sel.data == nil) {
		d.Selection(nil)
		return
	}

	offer := d.DataOffer(sel.MimeTypes(), &selectionOffer{sel: sel, source: sel.source, data: sel.data})
	d.Selection(offer)
}

// retain reads every format of source so that the selection can be
// handed to the watcher and outlive the source. Reads happen in the
// background and the result is delivered on the dispatch goroutine.
func (sel *Selection) retain(source *wl.DataSource) {
	mimes := source.MimeTypes()
	data := make(map[string][]byte, len(mimes))
	pending := len(mimes)

	done := func(mime string, buf []byte, err error) {
		pending--
		if err != nil {
			debug.Warn("retain selection", "mime", mime, "err", err)
		} else {
			data[mime] = buf
		}

		if (pending > 0) || (sel.source != source) {
			return
		}
		sel.data = data
		if sel.watcher != nil {
			sel.watcher(maps.Clone(data))
		}
	}

	for _, mime := range mimes {
		r, w, err := os.Pipe()
		if err != nil {
			done(mime, nil, err)
			continue
		}
		source.Send(mime, w)
		w.Close()

		go func() {
			defer r.Close()
			buf, err := io.ReadAll(r)
			sel.c.Post(func() { done(mime, buf, err) })
		}()
	}
}

type dataDeviceManagerListener Selection

func (lis *dataDeviceManagerListener) CreateDataSource(source *wl.DataSource) {
	sel := (*Selection)(lis)
	source.OnDelete(func() {
		if sel.source == source {
			sel.source = nil
			sel.announce()
		}
	})
}

func (lis *dataDeviceManagerListener) GetDataDevice(d *wl.DataDevice, seat *wl.Seat) {
	sel := (*Selection)(lis)
	sel.devices = append(sel.devices, d)
	d.OnDelete(func() { sel.devices = deleteItem(sel.devices, d) })
	d.Listener = (*dataDeviceListener)(sel)

	sel.offer(d)
}

type dataDeviceListener Selection

func (lis *dataDeviceListener) StartDrag(source *wl.DataSource, origin, icon *wl.Surface, serial uint32) {
	debug.Debug("drag and drop is not supported")
	if source != nil {
		source.Cancelled()
	}
}

func (lis *dataDeviceListener) SetSelection(source *wl.DataSource, serial uint32) {
	sel := (*Selection)(lis)
	if (source != nil) && (source == sel.source) {
		return
	}

	sel.setSource(source)
	if (source != nil) && (sel.watcher != nil) {
		sel.retain(source)
	}
	sel.announce()
}

type selectionOffer struct {
	sel    *Selection
	source *wl.DataSource
	data   map[string][]byte
}

func (o *selectionOffer) Accept(serial uint32, mime string) {}

func (o *selectionOffer) Receive(mime string, file *os.File) {
	if o.source != nil {
		if o.sel.source == o.source {
			o.source.Send(mime, file)
		}
		file.Close()
		return
	}

	buf, ok := o.data[mime]
	if !ok {
		file.Close()
		return
	}
	go func() {
		defer file.Close()
		_, err := file.Write(buf)
		if err != nil {
			debug.Warn("write selection", "mime", mime, "err", err)
		}
	}()
}
