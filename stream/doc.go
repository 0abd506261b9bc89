// Package stream provides an endpoint byte stream on top of the fifo engine,
// the buffering a CDC or vendor class driver keeps between application code
// and a bulk IN endpoint.
//
// A [Stream] is an [io.ReadWriter]. Bytes written to it are held in a
// one-byte-per-item FIFO until [Stream.Flush] sends them to a [hal.Endpoint]
// in max-packet-size packets. Received data can be pulled out of a packet
// FIFO register with [Stream.ReceiveFrom] and read back with [Stream.Read].
//
//	ep, _ := hal.NewLoopbackEndpoint(64, 8)
//	s, err := stream.New(make([]byte, 512), ep)
//	if err != nil {
//	    return err
//	}
//	fmt.Fprintf(s, "hello\r\n")
//	s.Flush(ctx)
package stream
