// Package hal provides simulated peripheral collaborators for the fifo
// engine: the hardware a USB device controller driver would hand the FIFO in
// place of real registers and DMA channels.
//
// # Packet FIFO Register
//
// [PacketFIFO] models the memory-mapped, constant-address data port of a USB
// peripheral. Reading the register pops the next 32-bit word of a received
// packet; writing it pushes a word toward the host. It satisfies
// [fifo.Register] and is what the engine's register copy mode talks to.
//
// # DMA Channel
//
// [DMAChannel] models a DMA engine that owns a FIFO's [fifo.DMA] handle. A
// transfer asks the FIFO for at most two linear windows, moves bytes between
// the windows and an [io.Reader] or [io.Writer], then advances the cursor
// and reports a [pkg.TransferStatus] to an optional completion callback, the
// way an interrupt service routine would be told of a finished transfer.
//
// # Endpoints
//
// [Endpoint] is the packet sink a stream flushes into, modelled on the data
// endpoint write of a device controller HAL. [LoopbackEndpoint] queues every
// packet so that tests and demos can read back what was sent.
//
// # Example
//
//	f, _ := fifo.New(make([]byte, 256), 256, 1, false)
//	ch, err := hal.NewDMAChannel(f, func(s pkg.TransferStatus, n uint16) {
//	    log.Println("dma done:", s, n)
//	})
//	if err != nil {
//	    return err
//	}
//	defer ch.Close()
//
//	n, err := ch.Receive(ctx, uart, 64)
package hal
