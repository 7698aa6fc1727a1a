// Package node defines proxy node entities and protocol rules.
package node

import (
	"time"

	"veil/internal/shared/errors"
	"veil/internal/shared/utils"
)

// Protocol identifies the proxy protocol a node speaks.
type Protocol string

const (
	ProtocolShadowsocks Protocol = "shadowsocks"
	ProtocolVMess       Protocol = "vmess"
	ProtocolTrojan      Protocol = "trojan"
	ProtocolHysteria2   Protocol = "hysteria2"
	ProtocolVLESS       Protocol = "vless"
)

func (p Protocol) Valid() bool {
	switch p {
	case ProtocolShadowsocks, ProtocolVMess, ProtocolTrojan, ProtocolHysteria2, ProtocolVLESS:
		return true
	}
	return false
}

// UsesUUIDCredential reports whether the node secret is carried as a UUID
// rather than a password in client configurations.
func (p Protocol) UsesUUIDCredential() bool {
	return p == ProtocolVMess || p == ProtocolVLESS
}

// Status represents the operational state of a node.
type Status string

const (
	StatusOnline      Status = "online"
	StatusOffline     Status = "offline"
	StatusMaintenance Status = "maintenance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusMaintenance:
		return true
	}
	return false
}

// Node is a proxy server managed by the control plane. Config carries
// protocol-specific settings as a free-form JSON object.
type Node struct {
	ID             uint
	Name           string
	Host           string
	Port           int
	Protocol       Protocol
	Secret         string
	Config         map[string]any
	Status         Status
	MaxUsers       int
	CurrentUsers   int
	TotalUpload    int64
	TotalDownload  int64
	SortOrder      int
	IncludeInClash bool
	LastHeartbeat  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewNode validates input and builds a node pending persistence.
// The secret is generated by the caller.
func NewNode(name, host string, port int, protocol Protocol, secret string, config map[string]any) (*Node, error) {
	if name == "" {
		return nil, errors.NewValidationError("node name is required")
	}
	if host == "" {
		return nil, errors.NewValidationError("node host is required")
	}
	if err := utils.ValidatePort(port); err != nil {
		return nil, err
	}
	if !protocol.Valid() {
		return nil, errors.NewValidationError("unsupported protocol", string(protocol))
	}
	if err := utils.ValidateNodeSecret(secret); err != nil {
		return nil, err
	}

	return &Node{
		Name:           name,
		Host:           host,
		Port:           port,
		Protocol:       protocol,
		Secret:         secret,
		Config:         config,
		Status:         StatusOffline,
		IncludeInClash: true,
	}, nil
}

// VerifySecret compares the presented secret against the stored one.
func (n *Node) VerifySecret(secret string) bool {
	return secret != "" && n.Secret == secret
}
