package game

import (
	"regexp"
	"strings"
)

// BotAddressPrefix marks an automated opponent. The resolver checks for it
// to decide whether to invoke the bot decision engine instead of waiting
// for external input. Bot addresses never reach the chain.
const BotAddressPrefix = "bot:"

// IsBotAddress reports whether the address denotes an automated opponent.
func IsBotAddress(addr string) bool {
	return strings.HasPrefix(addr, BotAddressPrefix)
}

// Wallet addresses are bech32-encoded and carry a network prefix. The core
// only validates the shape; signature verification belongs to the wallet
// boundary.
var addressRegex = regexp.MustCompile(`^(kaspa|kaspatest):[a-z0-9]{8,90}$`)

// ValidAddress reports whether the string is a plausible player address:
// either a wallet address or a bot identity.
func ValidAddress(addr string) bool {
	if IsBotAddress(addr) {
		return len(addr) > len(BotAddressPrefix)
	}
	return addressRegex.MatchString(addr)
}

// Slot status for a match participant.

// SlotOf returns which slot the address occupies in the match, or SlotNone.
func (m *Match) SlotOf(addr string) Slot {
	switch addr {
	case "":
		return SlotNone
	case m.Player1Address:
		return Slot1
	case m.Player2Address:
		return Slot2
	}
	return SlotNone
}

// AddressOf returns the address occupying the slot.
func (m *Match) AddressOf(s Slot) string {
	switch s {
	case Slot1:
		return m.Player1Address
	case Slot2:
		return m.Player2Address
	}
	return ""
}

// CharacterOf returns the selected character ID for the slot.
func (m *Match) CharacterOf(s Slot) string {
	switch s {
	case Slot1:
		return m.Player1CharacterID
	case Slot2:
		return m.Player2CharacterID
	}
	return ""
}

// HasBot reports whether either participant is an automated opponent.
func (m *Match) HasBot() bool {
	return IsBotAddress(m.Player1Address) || IsBotAddress(m.Player2Address)
}

// BotSlot returns the slot occupied by a bot, or SlotNone.
func (m *Match) BotSlot() Slot {
	if IsBotAddress(m.Player1Address) {
		return Slot1
	}
	if IsBotAddress(m.Player2Address) {
		return Slot2
	}
	return SlotNone
}
