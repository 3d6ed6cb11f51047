// Package constants provides protocol offsets and limits shared across
// dnsbpf components.
package constants

// Link and network layer geometry
const (
	// EthernetHeaderLen is the default offset of the L3 (IP) header,
	// i.e. the length of an Ethernet II header.
	EthernetHeaderLen = 14

	// IPv6HeaderLen is the fixed IPv6 header length. Extension headers
	// are not walked; the first next-header is assumed to be UDP.
	IPv6HeaderLen = 40

	// UDPHeaderLen is the UDP header length.
	UDPHeaderLen = 8

	// DNSHeaderLen is the fixed DNS message header length; the first
	// query name starts immediately after it.
	DNSHeaderLen = 12
)

// BPF program layout
const (
	// QueryOffsetSlot is the scratch memory slot holding the offset of
	// the first DNS query byte, stored once and reloaded at the start
	// of every pattern block after the first.
	QueryOffsetSlot = 0
)
