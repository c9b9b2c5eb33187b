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

package kernel

import "testing"

func TestHandleAllocateAndGet(t *testing.T) {
	k := New()
	h := k.AllocateHandle(HandleEntry{Kind: KindEvent, ID: 1})
	if _, ok := k.GetHandle(h); !ok {
		t.Fatal("expected handle to resolve")
	}
}

func TestHandleClose(t *testing.T) {
	k := New()
	h := k.AllocateHandle(HandleEntry{Kind: KindTimer})
	k.CloseHandle(h)
	if _, ok := k.GetHandle(h); ok {
		t.Fatal("expected handle to be gone after close")
	}
}

func TestPortRegistration(t *testing.T) {
	k := New()
	k.RegisterPort("srv:")
	if _, ok := k.ConnectToPort("srv:"); !ok {
		t.Fatal("expected connect to registered port to succeed")
	}
	if _, ok := k.ConnectToPort("nope:"); ok {
		t.Fatal("expected connect to unregistered port to fail")
	}
}

func TestScheduleNextPicksMinimumPriorityStableTieBreak(t *testing.T) {
	k := New()
	a := NewThread(1, 1, 0x100000, 0x8004000, 0x30, 0x1FF82000)
	b := NewThread(2, 1, 0x100000, 0x8004000, 0x10, 0x1FF82000)
	c := NewThread(3, 1, 0x100000, 0x8004000, 0x10, 0x1FF82000)
	k.Threads = []*Thread{a, b, c}

	idx, ok := k.ScheduleNext()
	if !ok || idx != 1 {
		t.Fatalf("expected thread index 1 (priority 0x10, first-seen), got idx=%d ok=%v", idx, ok)
	}
}

func TestScheduleNextKeepsRunningWhenNoneReady(t *testing.T) {
	k := New()
	a := NewThread(1, 1, 0x100000, 0x8004000, 0x30, 0x1FF82000)
	a.State = ThreadRunning
	k.Threads = []*Thread{a}
	k.CurrentThread = 0

	idx, ok := k.ScheduleNext()
	if !ok || idx != 0 {
		t.Fatalf("expected to keep the sole running thread, got idx=%d ok=%v", idx, ok)
	}
}

func TestWakeExpiredSleepers(t *testing.T) {
	k := New()
	a := NewThread(1, 1, 0x100000, 0x8004000, 0x30, 0x1FF82000)
	a.SuspendTimed(WaitReason{Kind: WaitSleep}, 1000)
	k.Threads = []*Thread{a}

	k.WakeExpiredSleepers(500)
	if a.State != ThreadWaiting {
		t.Fatal("500ns elapsed of a 1000ns sleep should not wake the thread")
	}
	k.WakeExpiredSleepers(500)
	if a.State != ThreadReady {
		t.Fatal("remaining 500ns elapsed should wake the thread")
	}
}
