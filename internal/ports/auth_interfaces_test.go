package ports_test

import (
	"github.com/target/eventhub/internal/adapters/authroles"
	"github.com/target/eventhub/internal/adapters/devauth"
	"github.com/target/eventhub/internal/adapters/hostedbackend"
	"github.com/target/eventhub/internal/adapters/oidc"
	"github.com/target/eventhub/internal/adapters/redis"
	"github.com/target/eventhub/internal/data"
	"github.com/target/eventhub/internal/mocks"
	mockauth "github.com/target/eventhub/internal/mocks/auth"
	"github.com/target/eventhub/internal/ports"
)

// Compile-time checks that every adapter satisfies its port.
var (
	_ ports.AuthProvider = (*oidc.Provider)(nil)
	_ ports.AuthProvider = (*devauth.Provider)(nil)
	_ ports.AuthProvider = (*mockauth.MockAuthProvider)(nil)

	_ ports.SessionStore = (*redis.SessionStore)(nil)
	_ ports.SessionStore = (*mockauth.MemorySessionStore)(nil)

	_ ports.RoleMapper = authroles.StaticRoleMapper{}
	_ ports.RoleMapper = mockauth.StaticRoleMapper{}

	_ ports.RecordClient = (*data.RecordStore)(nil)
	_ ports.RecordClient = (*hostedbackend.Client)(nil)
	_ ports.RecordClient = (*mocks.MockRecordClient)(nil)
)
