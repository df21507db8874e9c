package vm

const spriteWidth = 8

// drawSprite XORs an 8xN sprite read from memory at I onto the screen with its
// top-left corner at (originX, originY). Pixels past the right or bottom edge
// wrap around. VF is set when a lit pixel is turned off.
func (vm *VM) drawSprite(originX, originY uint8, height uint8) {
	vm.registers[flagRegister] = 0

	for row := 0; row < int(height); row++ {
		line := vm.memory[(vm.index+uint16(row))&addressMask]

		for col := 0; col < spriteWidth; col++ {
			if line&(0x80>>col) == 0 {
				continue
			}

			addr := getScreenAddr(int(originX)+col, int(originY)+row)
			if vm.gfx[addr] != 0 {
				vm.registers[flagRegister] = 1
			}

			vm.gfx[addr] ^= 1
		}
	}

	vm.drawFlag = true
}

func getScreenAddr(x, y int) int {
	x %= ScreenWidth
	if x < 0 {
		x += ScreenWidth
	}
	y %= ScreenHeight
	if y < 0 {
		y += ScreenHeight
	}

	return ScreenWidth*y + x
}
