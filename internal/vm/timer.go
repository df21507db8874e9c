package vm

// TickTimers decrements the delay and sound timers by one, stopping at zero.
// Callers invoke it at 60 Hz.
func (vm *VM) TickTimers() {
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}

	if vm.soundTimer > 0 {
		vm.soundTimer--
	}
}

// ShouldSound reports whether a tone is due on this tick: true exactly when
// the sound timer is about to expire. Sample it before TickTimers.
func (vm *VM) ShouldSound() bool {
	return vm.soundTimer == 1
}
