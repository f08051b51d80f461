// Package layout declares the frozen, byte-exact on-disk schema for the
// LVM1 metadata region: the PV record, VG record, PV uuid list, LV
// table, and PE map. Offsets and widths here must never change; they
// are the on-disk contract.
package layout

// SectorSize is the fixed disk sector size this format assumes.
const SectorSize = 512

// NameLen is the fixed width, in bytes, of a name or uuid field
// (vg_name, pv_uuid, lv_name, and each uuid-list entry).
const NameLen = 128

// Magic is the 2-byte identifier every PV record must carry at
// offset 0.
var Magic = [2]byte{'H', 'M'}

// Supported on-disk format versions. Version2 is migrated to Version1
// at read time (see diskrep.migrateVersion) and never persisted again.
const (
	Version1 uint16 = 1
	Version2 uint16 = 2
)

// RegionDiskSize is the on-disk size of a {base, size} region
// descriptor.
const RegionDiskSize = 8

// PVDiskSize is the on-disk size of a PVDisk record:
// id(2) + version(2) + 5*region(8) + pv_major(4) + pv_number(4) +
// pv_status(4) + pv_allocatable(4) + pv_size(4) + lv_cur(4) +
// pe_size(4) + pe_total(4) + pe_allocated(4) + pe_start(4) +
// vg_name(NameLen) + pv_uuid(NameLen).
const PVDiskSize = 2 + 2 + 5*RegionDiskSize + 4*10 + NameLen + NameLen

// VGDiskSize is the on-disk size of a VGDisk record: 13 uint32 fields
// (vg_number, vg_access, vg_status, lv_max, lv_cur, lv_open, pv_max,
// pv_cur, pv_act, pe_size, pe_total, pe_allocated, pvg_total).
const VGDiskSize = 4 * 13

// LVDiskSize is the on-disk size of an LVDisk record: lv_name(NameLen) +
// lv_access/status/open/number (4 uint32) + lv_size/allocated_le/
// stripes/stripesize (4 uint32) + read_ahead/io_timeout (2 uint32).
const LVDiskSize = NameLen + 4*4 + 4*4 + 4*2

// PEDiskSize is the on-disk size of a PE-map entry: {lv_num uint16,
// le_num uint16}.
const PEDiskSize = 4
