// Package client is the typed USB2SNES operation surface.
//
// Every operation is one blocking round trip on a transport.Channel:
// encode the request, send it, then either decode one JSON reply or
// reassemble a binary payload. A Client owns its channel and runs one
// operation at a time; there is no request correlation, retry or timeout
// at this layer.
//
//	c, err := client.Open(ctx, client.OpenConfig{
//	    Endpoint: transport.DefaultEndpoint(),
//	    Name:     "snesctl",
//	    Attach:   true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	wram, err := c.GetAddress(0xF50000, 0x100)
package client
