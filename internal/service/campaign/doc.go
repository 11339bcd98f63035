// Package campaign implements campaign lifecycle management and the
// enrollment engine.
//
// Enrollment evaluates a campaign's segment and unions the matching
// customers into the campaign's membership set. Membership only grows:
// there is no removal API. Concurrent enrollments against the same campaign
// are serialized so the evaluate-then-union step behaves as one logical
// transaction per campaign.
//
// Repository and membership-store implementations live in
// repository/postgres/ and repository/redis/.
package campaign
