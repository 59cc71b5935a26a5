package pushbridge

// DeviceInfo reports which native platform the bridge is running on.
type DeviceInfo interface {
	IsAndroid() bool
	IsIOS() bool
}

// Platform is a static DeviceInfo for hosts that know their platform up
// front.
type Platform string

// Known platforms.
const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformUnknown Platform = ""
)

// IsAndroid reports whether the platform is Android.
func (p Platform) IsAndroid() bool { return p == PlatformAndroid }

// IsIOS reports whether the platform is iOS.
func (p Platform) IsIOS() bool { return p == PlatformIOS }

// AuthSession reports whether a user session is currently authenticated.
type AuthSession interface {
	IsAuthenticated() bool
}

// User is the authenticated user attached to token sync calls.
type User struct {
	ID string
}

// UserService resolves the current authenticated user.
type UserService interface {
	Current() User
}
