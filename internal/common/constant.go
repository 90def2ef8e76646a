package common

// AccessTokenCookieName is the cookie carrying the access token for browser clients.
// Non-browser clients send the same token as "Authorization: Bearer <token>".
const AccessTokenCookieName = "sigmax_token"

// PersonaFallbackReply is returned when a persona reply cannot be generated.
const PersonaFallbackReply = "Encrypted channel negotiation failed. Retrying..."
