// This file is part of citrine3ds.
//
// citrine3ds is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// citrine3ds is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with citrine3ds.  If not, see <https://www.gnu.org/licenses/>.

package cpu

// Identification constants for the ARM1176JZF-S core the 3DS's ARM11
// uses.
const (
	MainID    = 0x410F_B767
	CacheType = 0x0001_1131

	defaultControl = 0x0005_1078
)

// CP15 models the subset of the system control coprocessor this HLE
// runtime needs: identification registers, the two translation-table
// base registers, the domain access control register, and the
// user/privileged thread-ID registers used to carry the TLS pointer.
// There is no real MMU page-walk (spec.md §1 Non-goals); cache and TLB
// maintenance operations are accepted and ignored.
type CP15 struct {
	Control      uint32
	TTBR0        uint32
	TTBR1        uint32
	TTBCR        uint32
	DomainAccess uint32

	ThreadIDUser uint32
	ThreadIDPriv uint32
}

// NewCP15 returns a CP15 with its documented reset values.
func NewCP15() CP15 {
	return CP15{Control: defaultControl}
}

// Read implements MRC for coprocessor 15, addressed by (CRn, opc1,
// CRm, opc2) as the ARM architecture manual names them.
func (p *CP15) Read(crn, opc1, crm, opc2 uint8) uint32 {
	switch {
	case crn == 0 && opc1 == 0 && crm == 0 && opc2 == 0:
		return MainID
	case crn == 0 && opc1 == 0 && crm == 0 && opc2 == 1:
		return CacheType
	case crn == 1 && opc1 == 0 && crm == 0 && opc2 == 0:
		return p.Control
	case crn == 2 && opc1 == 0 && crm == 0 && opc2 == 0:
		return p.TTBR0
	case crn == 2 && opc1 == 0 && crm == 0 && opc2 == 1:
		return p.TTBR1
	case crn == 2 && opc1 == 0 && crm == 0 && opc2 == 2:
		return p.TTBCR
	case crn == 3 && opc1 == 0 && crm == 0 && opc2 == 0:
		return p.DomainAccess
	case crn == 13 && opc1 == 0 && crm == 0 && opc2 == 2:
		return p.ThreadIDUser
	case crn == 13 && opc1 == 0 && crm == 0 && opc2 == 3:
		return p.ThreadIDPriv
	default:
		return 0
	}
}

// Write implements MCR for coprocessor 15. Cache (CRn=7) and TLB
// (CRn=8) maintenance operations are no-ops, as this runtime has no
// cache model to invalidate.
func (p *CP15) Write(crn, opc1, crm, opc2 uint8, value uint32) {
	switch {
	case crn == 1 && opc1 == 0 && crm == 0 && opc2 == 0:
		p.Control = value
	case crn == 2 && opc1 == 0 && crm == 0 && opc2 == 0:
		p.TTBR0 = value
	case crn == 2 && opc1 == 0 && crm == 0 && opc2 == 1:
		p.TTBR1 = value
	case crn == 2 && opc1 == 0 && crm == 0 && opc2 == 2:
		p.TTBCR = value
	case crn == 3 && opc1 == 0 && crm == 0 && opc2 == 0:
		p.DomainAccess = value
	case crn == 13 && opc1 == 0 && crm == 0 && opc2 == 2:
		p.ThreadIDUser = value
	case crn == 7, crn == 8:
		// cache/TLB maintenance: no-op
	default:
	}
}

// MMUEnabled reports whether the M bit of the control register is
// set. This runtime never changes behavior based on it (no page
// walk), and no kernel or debug output reports it.
func (p *CP15) MMUEnabled() bool {
	return p.Control&1 != 0
}
