package wl

import (
	"os"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
	"golang.org/x/exp/slices"
)

type DataDeviceManagerListener interface {
	CreateDataSource(source *DataSource)
	GetDataDevice(device *DataDevice, seat *Seat)
}

type DataDeviceManager struct {
	object
	Listener DataDeviceManagerListener
}

func BindDataDeviceManager(client *Client, version, id uint32) (*DataDeviceManager, error) {
	m := DataDeviceManager{object: newObject(client, version)}
	return &m, client.Add(&m, id)
}

func (m *DataDeviceManager) Interface() string {
	return protocol.DataDeviceManagerInterface
}

func (m *DataDeviceManager) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.DataDeviceManagerRequestCreateDataSource:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		source, err := newChild(m.client, id, &DataSource{object: newObject(m.client, m.version)})
		if err != nil {
			return err
		}
		if m.Listener != nil {
			m.Listener.CreateDataSource(source)
		}
		return nil

	case protocol.DataDeviceManagerRequestGetDataDevice:
		id := msg.ReadUint()
		seatID := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		seat, err := lookup[*Seat](m.client, seatID)
		if err != nil {
			return err
		}
		device, err := newChild(m.client, id, &DataDevice{object: newObject(m.client, m.version)})
		if err != nil {
			return err
		}
		if m.Listener != nil {
			m.Listener.GetDataDevice(device, seat)
		}
		return nil

	default:
		return unknownOp(m, msg.Op())
	}
}

// DataSource is data offered by a client, such as a selection.
type DataSource struct {
	object
	mimeTypes []string
}

func (s *DataSource) Interface() string {
	return protocol.DataSourceInterface
}

func (s *DataSource) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.DataSourceRequestOffer:
		mime := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}

		if !slices.Contains(s.mimeTypes, mime) {
			s.mimeTypes = append(s.mimeTypes, mime)
		}
		return nil

	case protocol.DataSourceRequestDestroy:
		s.Destroy()
		return nil

	default:
		return unknownOp(s, msg.Op())
	}
}

// MimeTypes returns the types that the source has offered so far.
func (s *DataSource) MimeTypes() []string {
	return slices.Clone(s.mimeTypes)
}

func (s *DataSource) Target(mime string) {
	msg := wire.NewEvent(s, protocol.DataSourceEventTarget)
	msg.WriteString(mime)
	s.enqueue(msg)
}

// Send asks the client to write the data for mime to file.
func (s *DataSource) Send(mime string, file *os.File) {
	msg := wire.NewEvent(s, protocol.DataSourceEventSend)
	msg.WriteString(mime)
	msg.WriteFile(file)
	s.enqueue(msg)
}

func (s *DataSource) Cancelled() {
	s.enqueue(wire.NewEvent(s, protocol.DataSourceEventCancelled))
}

type DataDeviceListener interface {
	StartDrag(source *DataSource, origin, icon *Surface, serial uint32)
	SetSelection(source *DataSource, serial uint32)
}

type DataDevice struct {
	object
	Listener DataDeviceListener
}

func (d *DataDevice) Interface() string {
	return protocol.DataDeviceInterface
}

func (d *DataDevice) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.DataDeviceRequestStartDrag:
		sourceID := msg.ReadObject()
		originID := msg.ReadObject()
		iconID := msg.ReadObject()
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		source, err := lookup[*DataSource](d.client, sourceID)
		if err != nil {
			return err
		}
		origin, err := lookup[*Surface](d.client, originID)
		if err != nil {
			return err
		}
		icon, err := lookup[*Surface](d.client, iconID)
		if err != nil {
			return err
		}
		if d.Listener != nil {
			d.Listener.StartDrag(source, origin, icon, serial)
		}
		return nil

	case protocol.DataDeviceRequestSetSelection:
		sourceID := msg.ReadObject()
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		source, err := lookup[*DataSource](d.client, sourceID)
		if err != nil {
			return err
		}
		if d.Listener != nil {
			d.Listener.SetSelection(source, serial)
		}
		return nil

	default:
		return unknownOp(d, msg.Op())
	}
}

// DataOffer creates a new wl_data_offer, announces it to the client
// and then lists mimeTypes on it.
func (d *DataDevice) DataOffer(mimeTypes []string, lis DataOfferListener) *DataOffer {
	offer := DataOffer{
		object:   newObject(d.client, d.version),
		Listener: lis,
	}
	d.client.AddServerObject(&offer)

	msg := wire.NewEvent(d, protocol.DataDeviceEventDataOffer)
	msg.WriteUint(offer.id)
	d.enqueue(msg)

	for _, mime := range mimeTypes {
		offer.Offer(mime)
	}
	return &offer
}

func (d *DataDevice) Enter(serial uint32, surface *Surface, x, y wire.Fixed, offer *DataOffer) {
	msg := wire.NewEvent(d, protocol.DataDeviceEventEnter)
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	msg.WriteFixed(x)
	msg.WriteFixed(y)
	msg.WriteObject(offer)
	d.enqueue(msg)
}

func (d *DataDevice) Leave() {
	d.enqueue(wire.NewEvent(d, protocol.DataDeviceEventLeave))
}

func (d *DataDevice) Motion(time uint32, x, y wire.Fixed) {
	msg := wire.NewEvent(d, protocol.DataDeviceEventMotion)
	msg.WriteUint(time)
	msg.WriteFixed(x)
	msg.WriteFixed(y)
	d.enqueue(msg)
}

func (d *DataDevice) Drop() {
	d.enqueue(wire.NewEvent(d, protocol.DataDeviceEventDrop))
}

// Selection announces the current selection. A nil offer means that
// there is none.
func (d *DataDevice) Selection(offer *DataOffer) {
	msg := wire.NewEvent(d, protocol.DataDeviceEventSelection)
	msg.WriteObject(offer)
	d.enqueue(msg)
}

type DataOfferListener interface {
	Accept(serial uint32, mime string)
	Receive(mime string, file *os.File)
}

type DataOffer struct {
	object
	Listener DataOfferListener
}

func (o *DataOffer) Interface() string {
	return protocol.DataOfferInterface
}

func (o *DataOffer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.DataOfferRequestAccept:
		serial := msg.ReadUint()
		mime := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if o.Listener != nil {
			o.Listener.Accept(serial, mime)
		}
		return nil

	case protocol.DataOfferRequestReceive:
		mime := msg.ReadString()
		file := msg.ReadFile()
		if err := msg.Err(); err != nil {
			if file != nil {
				file.Close()
			}
			return err
		}
		if o.Listener == nil {
			file.Close()
			return nil
		}
		o.Listener.Receive(mime, file)
		return nil

	case protocol.DataOfferRequestDestroy:
		o.Destroy()
		return nil

	default:
		return unknownOp(o, msg.Op())
	}
}

func (o *DataOffer) Offer(mime string) {
	msg := wire.NewEvent(o, protocol.DataOfferEventOffer)
	msg.WriteString(mime)
	o.enqueue(msg)
}
