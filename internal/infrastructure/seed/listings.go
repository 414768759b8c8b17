package seed

import (
	"time"

	"github.com/arielspace/listing-board/internal/core/domain"
)

func strPtr(s string) *string { return &s }

// DefaultListings are inserted into an empty board.
func DefaultListings() []domain.Listing {
	return []domain.Listing{
		{
			Title:            "Vegetable Cultivation",
			ShortDescription: "Learn sustainable farming techniques and modern agricultural practices. Gain hands-on experience with crop management.",
			FullDetails: `## About This Internship

This comprehensive vegetable cultivation internship offers hands-on experience in sustainable farming practices and modern agricultural techniques.

### What You'll Learn:
- Sustainable farming methods
- Crop rotation and soil management
- Organic pest control
- Harvest and post-harvest handling
- Farm-to-market supply chain

### Requirements:
- Interest in agriculture and sustainability
- Physical fitness for outdoor work
- Basic understanding of plant biology (preferred)
- Commitment to 3-month program

### Benefits:
- Industry certification upon completion
- Hands-on experience with modern farming equipment
- Mentorship from experienced agronomists
- Potential for full-time employment`,
			HasCertification: true,
			ApplyURL:         "https://example.com/apply/vegetable-cultivation",
			Location:         strPtr("On-site"),
			Duration:         strPtr("3 months"),
			CreatedAt:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:            "Web Development Internship",
			ShortDescription: "Learn modern web development with React, Next.js, and TypeScript in a professional environment",
			FullDetails: `## About This Internship

Join our development team and gain practical experience building modern web applications using cutting-edge technologies.

### What You'll Learn:
- React and Next.js development
- TypeScript programming
- RESTful API integration
- Database design and management
- Git and collaborative development

### Requirements:
- Basic knowledge of HTML, CSS, and JavaScript
- Understanding of programming fundamentals
- Portfolio of personal projects (preferred)
- Available for full-time internship

### Benefits:
- Industry-recognized certification
- Work on real client projects
- Code reviews and mentorship
- Modern tech stack experience`,
			HasCertification: true,
			ApplyURL:         "https://example.com/apply/web-development",
			Location:         strPtr("Remote/Hybrid"),
			Duration:         strPtr("6 months"),
			CreatedAt:        time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:            "Mobile App Development",
			ShortDescription: "Build mobile applications using React Native and gain hands-on experience with real projects",
			FullDetails: `## About This Project

Work on exciting mobile app projects using React Native and gain experience in cross-platform mobile development.

### What You'll Learn:
- React Native development
- iOS and Android app deployment
- Mobile UI/UX best practices
- App performance optimization
- Mobile-specific APIs and features

### Requirements:
- JavaScript/TypeScript knowledge
- Understanding of React (preferred)
- Own a smartphone for testing
- 4-month availability

### Benefits:
- Published apps in your portfolio
- Exposure to mobile development lifecycle
- Flexible working hours`,
			HasCertification: false,
			ApplyURL:         "https://example.com/apply/mobile-app",
			Location:         strPtr("Remote"),
			Duration:         strPtr("4 months"),
			CreatedAt:        time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		},
	}
}
