//go:build linux

package dmtask

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Ioctl encoding constants, see <asm-generic/ioctl.h>.
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2
)

// dmIoctlType is the ioctl "magic" for /dev/mapper/control, see
// <linux/dm-ioctl.h>.
const dmIoctlType = 0xfd

// UAPI size limits.
const (
	dmNameLen = 128
	dmUUIDLen = 129
)

// DM_DEVICE_* command numbers, see <linux/dm-ioctl.h>. DM_DEV_SUSPEND
// serves both Suspend and Resume: the distinction is the
// DM_SUSPEND_FLAG bit in dm_ioctl.Flags, not the command number.
const (
	dmDevCreateCmd  = 3
	dmDevRemoveCmd  = 4
	dmDevSuspendCmd = 6
	dmDevStatusCmd  = 7
	dmTableLoadCmd  = 9
)

const (
	dmVersionMajor = 4
	dmVersionMinor = 0
	dmVersionPatch = 0
)

const dmSuspendFlag = 1 << 1

// dmIoctl mirrors struct dm_ioctl; layout must match the kernel ABI.
type dmIoctl struct {
	Version     [3]uint32
	DataSize    uint32
	DataStart   uint32
	TargetCount uint32
	OpenCount   int32
	Flags       uint32
	EventNr     uint32
	Padding     uint32
	Dev         uint64
	Name        [dmNameLen]byte
	UUID        [dmUUIDLen]byte
	Data        [7]byte
}

// dmTargetSpec mirrors struct dm_target_spec.
type dmTargetSpec struct {
	SectorStart uint64
	Length      uint64
	Status      int32
	Next        uint32
	TargetType  [16]byte
}

func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

func dmReq(nr uintptr) uintptr {
	return ioc(iocRead|iocWrite, dmIoctlType, nr, unsafe.Sizeof(dmIoctl{}))
}

// LinuxFactory opens /dev/mapper/control and issues real dm-ioctl
// calls. Grounded on dm_linux.go's Control type and ioctl helpers.
type LinuxFactory struct {
	f *os.File
}

// OpenLinuxFactory opens the device-mapper control device.
func OpenLinuxFactory() (*LinuxFactory, error) {
	f, err := os.OpenFile("/dev/mapper/control", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("dmtask: open control device: %w", err)
	}
	return &LinuxFactory{f: f}, nil
}

// Close releases the control device handle.
func (lf *LinuxFactory) Close() error {
	return lf.f.Close()
}

func (lf *LinuxFactory) NewTask(name string, cmd Command) (Task, error) {
	return &linuxTask{factory: lf, name: name, cmd: cmd}, nil
}

type linuxTask struct {
	factory *LinuxFactory
	name    string
	cmd     Command
	targets  []TargetRow
	ran      bool
	lastIO   dmIoctl
	notFound bool
}

func (t *linuxTask) AddTarget(row TargetRow) error {
	if t.cmd != Create && t.cmd != Reload {
		return fmt.Errorf("dmtask: AddTarget invalid for %s task", t.cmd)
	}
	t.targets = append(t.targets, row)
	return nil
}

func newBaseIoctl(name string, dataSize int) dmIoctl {
	var io dmIoctl
	io.Version[0] = dmVersionMajor
	io.Version[1] = dmVersionMinor
	io.Version[2] = dmVersionPatch
	io.DataSize = uint32(dataSize)
	io.DataStart = uint32(unsafe.Sizeof(dmIoctl{}))
	copy(io.Name[:], name)
	return io
}

func (t *linuxTask) rawIoctl(nr uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, t.factory.f.Fd(), dmReq(nr), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return fmt.Errorf("dmtask: ioctl %s on %q: %w", t.cmd, t.name, errno)
	}
	return nil
}

func (t *linuxTask) runSimple(nr uintptr, flags uint32) error {
	buf := make([]byte, unsafe.Sizeof(dmIoctl{}))
	io := (*dmIoctl)(unsafe.Pointer(&buf[0]))
	*io = newBaseIoctl(t.name, len(buf))
	io.Flags = flags
	if err := t.rawIoctl(nr, buf); err != nil {
		return err
	}
	t.lastIO = *io
	t.ran = true
	return nil
}

func (t *linuxTask) runTableLoad() error {
	headerSize := int(unsafe.Sizeof(dmIoctl{}))
	specSize := int(unsafe.Sizeof(dmTargetSpec{}))

	var body []byte
	for i, row := range t.targets {
		start := len(body)
		body = append(body, make([]byte, specSize)...)
		spec := (*dmTargetSpec)(unsafe.Pointer(&body[start]))
		spec.SectorStart = row.StartSector
		spec.Length = row.LengthSector
		copy(spec.TargetType[:], row.Type)

		body = append(body, row.Params...)
		body = append(body, 0)

		rel := len(body) - start
		if pad := ((rel + 7) &^ 7) - rel; pad > 0 {
			body = append(body, make([]byte, pad)...)
		}
		if i < len(t.targets)-1 {
			spec.Next = uint32(len(body) - start)
		}
	}

	buf := make([]byte, headerSize+len(body))
	io := (*dmIoctl)(unsafe.Pointer(&buf[0]))
	*io = newBaseIoctl(t.name, len(buf))
	io.TargetCount = uint32(len(t.targets))
	copy(buf[headerSize:], body)

	if err := t.rawIoctl(dmTableLoadCmd, buf); err != nil {
		return err
	}
	t.lastIO = *io
	t.ran = true
	return nil
}

func (t *linuxTask) Run() error {
	switch t.cmd {
	case Create:
		if err := t.runSimple(dmDevCreateCmd, 0); err != nil {
			return err
		}
		return t.runTableLoad()
	case Reload:
		return t.runTableLoad()
	case Suspend:
		return t.runSimple(dmDevSuspendCmd, dmSuspendFlag)
	case Resume:
		return t.runSimple(dmDevSuspendCmd, 0)
	case Remove:
		return t.runSimple(dmDevRemoveCmd, 0)
	case Info:
		if err := t.runSimple(dmDevStatusCmd, 0); err != nil {
			if errors.Is(err, unix.ENXIO) {
				t.ran = true
				t.lastIO = dmIoctl{}
				t.notFound = true
				return nil
			}
			return err
		}
		return nil
	default:
		return fmt.Errorf("dmtask: unknown command %s", t.cmd)
	}
}

func (t *linuxTask) Info() (DeviceInfo, error) {
	if t.cmd != Info {
		return DeviceInfo{}, fmt.Errorf("dmtask: Info invalid for %s task", t.cmd)
	}
	if !t.ran {
		return DeviceInfo{}, fmt.Errorf("dmtask: Info called before Run")
	}
	if t.notFound {
		return DeviceInfo{Exists: false}, nil
	}
	return DeviceInfo{
		Exists:    true,
		Suspended: t.lastIO.Flags&dmSuspendFlag != 0,
		OpenCount: t.lastIO.OpenCount,
		Major:     unix.Major(t.lastIO.Dev),
		Minor:     unix.Minor(t.lastIO.Dev),
	}, nil
}

func (t *linuxTask) Destroy() {}
