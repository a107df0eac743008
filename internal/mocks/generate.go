// Package mocks provides gomock implementations of the upstream API ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockCheckInAPI(ctrl)
//	api.EXPECT().LookupClient(gomock.Any(), "token", "12345").Return(client, nil)
package mocks

// ProfileFetcher: FetchProfile
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_fetcher_mock.go github.com/clientcheckin/checkin-web/internal/ports ProfileFetcher

// CheckInAPI: LookupClient, CheckIn, ListCheckIns. SignupAPI: Signup
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=checkin_api_mock.go github.com/clientcheckin/checkin-web/internal/ports CheckInAPI,SignupAPI
