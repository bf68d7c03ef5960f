package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacket_SerializeRoundTrip(t *testing.T) {
	p := &Packet{PacketType: PacketMessagingBatch, Data: []byte{1, 2, 3, 4}}

	data, err := p.Serialize()
	require.NoError(t, err)
	assert.Equal(t, byte(PacketMessagingBatch), data[0])

	parsed, err := ParsePacket(data)
	require.NoError(t, err)
	assert.Equal(t, PacketMessagingBatch, parsed.PacketType)
	assert.Equal(t, []byte{1, 2, 3, 4}, parsed.Data)
}

func TestPacket_SerializeNilDataFails(t *testing.T) {
	p := &Packet{PacketType: PacketMessagingBatch}
	_, err := p.Serialize()
	assert.Error(t, err)
}

func TestParsePacket_TooShortFails(t *testing.T) {
	_, err := ParsePacket(nil)
	assert.Error(t, err)
}

func TestPacket_EmptyDataRoundTrips(t *testing.T) {
	p := &Packet{PacketType: PacketVersionNegotiation, Data: []byte{}}
	data, err := p.Serialize()
	require.NoError(t, err)

	parsed, err := ParsePacket(data)
	require.NoError(t, err)
	assert.Equal(t, PacketVersionNegotiation, parsed.PacketType)
	assert.Empty(t, parsed.Data)
}
