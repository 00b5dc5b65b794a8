package services

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"questlog/config"
	"questlog/internal/types"
	"questlog/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// OIDCDiscovery represents the OIDC discovery document
type OIDCDiscovery struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKS_URI              string `json:"jwks_uri"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSet represents a set of JSON Web Keys
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// IdentityService validates OIDC ID tokens issued by the external identity
// provider. The provider owns authentication entirely; this service only
// verifies signatures and extracts claims.
type IdentityService struct {
	log        logger.Logger
	httpClient *http.Client
	issuer     string
	clientID   string

	// OIDC discovery and JWK caching
	discovery     *OIDCDiscovery
	jwks          *JWKSet
	discoveryMux  sync.RWMutex
	jwksMux       sync.RWMutex
	discoveryTime time.Time
	jwksTime      time.Time
	cacheTTL      time.Duration
}

func NewIdentityService(cfg config.Config) (*IdentityService, error) {
	log := logger.New("IdentityService")

	if cfg.OIDCIssuerURL == "" || cfg.OIDCClientID == "" {
		return nil, log.ErrMsg(
			"identity configuration required but not provided: missing OIDC_ISSUER_URL or OIDC_CLIENT_ID",
		)
	}

	service := &IdentityService{
		log: log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		issuer:   cfg.OIDCIssuerURL,
		clientID: cfg.OIDCClientID,
		cacheTTL: 15 * time.Minute,
	}

	log.Info("Identity service initialized", "issuer", cfg.OIDCIssuerURL)
	return service, nil
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	EmailVerified bool   `json:"email_verified"`
}

// ValidateIDToken verifies an OIDC ID token's RSA signature, issuer, and
// audience, and returns the verified claims.
func (s *IdentityService) ValidateIDToken(
	ctx context.Context,
	idToken string,
) (*types.TokenInfo, error) {
	log := s.log.TraceFromContext(ctx).Function("ValidateIDToken")

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(
		idToken,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}

			kidHeader, ok := token.Header["kid"].(string)
			if !ok {
				return nil, fmt.Errorf("missing or invalid 'kid' in JWT header")
			}

			return s.getPublicKeyForToken(ctx, kidHeader)
		},
	)
	if err != nil {
		return nil, log.Err("JWT signature verification failed", err)
	}

	if !token.Valid {
		return nil, log.ErrMsg("JWT token is invalid")
	}

	expectedIssuer := strings.TrimSuffix(s.issuer, "/")
	if claims.Issuer != expectedIssuer {
		return nil, log.ErrMsg("invalid issuer: expected " + expectedIssuer + ", got " + claims.Issuer)
	}

	if !slices.Contains(claims.Audience, s.clientID) {
		return nil, log.ErrMsg("invalid audience: client ID not found in " + fmt.Sprintf("%v", claims.Audience))
	}

	info := &types.TokenInfo{
		UserID:        claims.Subject,
		FirstName:     claims.GivenName,
		LastName:      claims.FamilyName,
		EmailVerified: claims.EmailVerified,
	}
	if claims.Email != "" {
		info.Email = &claims.Email
	}
	if claims.Name != "" {
		info.Name = &claims.Name
	}

	log.Debug("ID token validation successful", "sub", claims.Subject)
	return info, nil
}

// getOIDCDiscovery fetches and caches the OIDC discovery document
func (s *IdentityService) getOIDCDiscovery(ctx context.Context) (*OIDCDiscovery, error) {
	log := s.log.TraceFromContext(ctx).Function("getOIDCDiscovery")

	s.discoveryMux.RLock()
	if s.discovery != nil && time.Since(s.discoveryTime) < s.cacheTTL {
		discovery := s.discovery
		s.discoveryMux.RUnlock()
		return discovery, nil
	}
	s.discoveryMux.RUnlock()

	discoveryURL := strings.TrimSuffix(s.issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, log.Err("failed to create discovery request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, log.Err("failed to fetch OIDC discovery", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close discovery response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, log.Error("OIDC discovery request failed", "statusCode", resp.StatusCode)
	}

	var discovery OIDCDiscovery
	if err := json.NewDecoder(resp.Body).Decode(&discovery); err != nil {
		return nil, log.Err("failed to decode OIDC discovery", err)
	}

	if discovery.Issuer != strings.TrimSuffix(s.issuer, "/") {
		return nil, log.ErrMsg("invalid issuer in discovery document: got " + discovery.Issuer)
	}

	if discovery.JWKS_URI == "" {
		return nil, log.ErrMsg("missing JWKS URI in discovery document")
	}

	s.discoveryMux.Lock()
	s.discovery = &discovery
	s.discoveryTime = time.Now()
	s.discoveryMux.Unlock()

	log.Info("OIDC discovery fetched successfully", "jwks_uri", discovery.JWKS_URI)
	return &discovery, nil
}

// getJWKS fetches and caches the JSON Web Key Set
func (s *IdentityService) getJWKS(ctx context.Context) (*JWKSet, error) {
	log := s.log.TraceFromContext(ctx).Function("getJWKS")

	s.jwksMux.RLock()
	if s.jwks != nil && time.Since(s.jwksTime) < s.cacheTTL {
		jwks := s.jwks
		s.jwksMux.RUnlock()
		return jwks, nil
	}
	s.jwksMux.RUnlock()

	discovery, err := s.getOIDCDiscovery(ctx)
	if err != nil {
		return nil, log.Err("failed to get OIDC discovery for JWKS", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discovery.JWKS_URI, nil)
	if err != nil {
		return nil, log.Err("failed to create JWKS request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, log.Err("failed to fetch JWKS", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close JWKS response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, log.Error("JWKS request failed", "statusCode", resp.StatusCode)
	}

	var jwks JWKSet
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, log.Err("failed to decode JWKS", err)
	}

	if len(jwks.Keys) == 0 {
		return nil, log.ErrMsg("JWKS contains no keys")
	}

	s.jwksMux.Lock()
	s.jwks = &jwks
	s.jwksTime = time.Now()
	s.jwksMux.Unlock()

	log.Info("JWKS fetched successfully", "keys_count", len(jwks.Keys))
	return &jwks, nil
}

// getPublicKeyForToken retrieves the public key for JWT verification based on
// the kid header
func (s *IdentityService) getPublicKeyForToken(
	ctx context.Context,
	kidHeader string,
) (*rsa.PublicKey, error) {
	log := s.log.TraceFromContext(ctx).Function("getPublicKeyForToken")

	jwks, err := s.getJWKS(ctx)
	if err != nil {
		return nil, log.Err("failed to get JWKS", err)
	}

	var targetJWK *JWK
	for _, jwk := range jwks.Keys {
		if jwk.Kid == kidHeader {
			targetJWK = &jwk
			break
		}
	}

	if targetJWK == nil {
		return nil, log.ErrMsg("no matching key found: kid " + kidHeader + " not found in JWKS")
	}

	if targetJWK.Kty != "RSA" {
		return nil, log.ErrMsg("unsupported key type: expected RSA, got " + targetJWK.Kty)
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(targetJWK.N)
	if err != nil {
		return nil, log.Err("failed to decode RSA modulus (n)", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(targetJWK.E)
	if err != nil {
		return nil, log.Err("failed to decode RSA exponent (e)", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)

	// Prevent overflow on 32-bit systems
	if !e.IsInt64() || e.Int64() > int64(^uint(0)>>1) {
		return nil, log.ErrMsg("RSA exponent too large: " + e.String())
	}

	return &rsa.PublicKey{
		N: n,
		E: int(e.Int64()),
	}, nil
}
